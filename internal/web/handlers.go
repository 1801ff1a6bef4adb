package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"pocketgrove/internal/battle"
	"pocketgrove/internal/content"
	"pocketgrove/internal/rng"
	"pocketgrove/internal/save"
	"pocketgrove/internal/session"
	"pocketgrove/internal/world"
)

// Entry is one browser session's game. Every use holds mu.
type Entry struct {
	mu    sync.Mutex
	game  *world.Game
	saves *save.Controller
}

type Server struct {
	Content *content.Content
	Store   session.Store[*Entry]
	Saves   session.Store[[]byte]
	Rand    rng.Source
	Hub     *Hub

	createMu sync.Mutex
}

const cookieName = "grove_sid"

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/world/{intent}", s.handleWorld).Methods(http.MethodPost)
	api.HandleFunc("/dialog/next", s.handleDialogNext).Methods(http.MethodPost)
	api.HandleFunc("/battle/action", s.handleBattleAction).Methods(http.MethodPost)
	api.HandleFunc("/battle/resolve", s.handleBattleResolve).Methods(http.MethodPost)
	api.HandleFunc("/save/reset", s.handleReset).Methods(http.MethodPost)
	api.HandleFunc("/map.pdf", s.handleMap).Methods(http.MethodGet)
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/state", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Response is the body of every API call.
type Response struct {
	HUD        world.HUD        `json:"hud"`
	Dialog     string           `json:"dialog,omitempty"`
	Battle     *battle.Snapshot `json:"battle,omitempty"`
	Events     []world.Event    `json:"events"`
	Message    string           `json:"message,omitempty"`
	Pending    bool             `json:"pending,omitempty"`
	DelayMS    int64            `json:"delayMs,omitempty"`
	Outcome    battle.Outcome   `json:"outcome,omitempty"`
	Interacted world.SpotKind   `json:"interacted,omitempty"`
}

// respond drains the game's events, pushes them to the session's sockets
// and writes the response. The caller holds e.mu.
func (s *Server) respond(w http.ResponseWriter, id string, e *Entry, resp Response) {
	g := e.game
	resp.Events = g.Drain()
	if resp.Events == nil {
		resp.Events = []world.Event{}
	}
	resp.HUD = g.HUD()
	if line, ok := g.DialogLine(); ok {
		resp.Dialog = line
	}
	if snap, ok := g.Battle(); ok {
		resp.Battle = &snap
	}
	if s.Hub != nil && len(resp.Events) > 0 {
		s.Hub.Publish(id, resp.Events)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	e, id, err := s.getOrCreateEntry(r.Context(), w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s.respond(w, id, e, Response{})
}

type moveRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// POST /api/world/{move,tick,interact,pause}
func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	intent := mux.Vars(r)["intent"]

	var move moveRequest
	switch intent {
	case "move":
		if err := json.NewDecoder(r.Body).Decode(&move); err != nil || move.X == nil || move.Y == nil {
			http.Error(w, "bad move request", http.StatusBadRequest)
			return
		}
	case "tick", "interact", "pause":
	default:
		http.NotFound(w, r)
		return
	}

	e, id, err := s.getOrCreateEntry(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var resp Response
	switch intent {
	case "move":
		err = e.game.Move(ctx, *move.X, *move.Y)
	case "tick":
		err = e.game.Tick(ctx)
	case "interact":
		resp.Interacted, err = e.game.Interact(ctx)
	case "pause":
		err = e.game.TogglePause()
	}
	if err != nil {
		msg, ok := rejection(err)
		if !ok {
			log.Printf("web: %s %s: %v", intent, id, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		resp.Message = msg
	}
	s.respond(w, id, e, resp)
}

func (s *Server) handleDialogNext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, id, err := s.getOrCreateEntry(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.game.NextDialog(ctx)
	s.respond(w, id, e, Response{})
}

type actionRequest struct {
	Action battle.Action `json:"action"`
}

func validAction(a battle.Action) bool {
	switch a {
	case battle.Attack, battle.Skill, battle.UseItem, battle.Run, battle.Capture:
		return true
	}
	return false
}

func (s *Server) handleBattleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validAction(req.Action) {
		http.Error(w, "bad action", http.StatusBadRequest)
		return
	}
	e, id, err := s.getOrCreateEntry(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	res, err := e.game.Act(ctx, req.Action)
	s.battleStep(w, id, e, res, err)
}

func (s *Server) handleBattleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, id, err := s.getOrCreateEntry(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	res, err := e.game.Resolve(ctx)
	s.battleStep(w, id, e, res, err)
}

func (s *Server) battleStep(w http.ResponseWriter, id string, e *Entry, res battle.Result, err error) {
	resp := Response{
		Pending: res.Pending,
		DelayMS: res.Delay.Milliseconds(),
		Outcome: res.Outcome,
	}
	if err != nil {
		msg, ok := rejection(err)
		if !ok {
			log.Printf("web: battle %s: %v", id, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if res.Message != "" {
			msg = res.Message
		}
		resp.Message = msg
	}
	s.respond(w, id, e, resp)
}

// rejection maps an expected refusal to its player-facing message.
func rejection(err error) (string, bool) {
	switch {
	case errors.Is(err, world.ErrPaused):
		return "The game is paused.", true
	case errors.Is(err, world.ErrInBattle):
		return "Finish the battle first.", true
	case errors.Is(err, world.ErrDialogOpen):
		return "Finish the conversation first.", true
	case errors.Is(err, world.ErrNoBattle):
		return "There is no battle.", true
	case errors.Is(err, battle.ErrNotPlayerTurn):
		return "Wait for your turn.", true
	case errors.Is(err, battle.ErrNothingPending):
		return "The enemy has nothing to do.", true
	case errors.Is(err, battle.ErrBattleOver):
		return "The battle is over.", true
	case errors.Is(err, battle.ErrInsufficientResource):
		return "You can't do that now.", true
	}
	return "", false
}

// POST /api/save/reset wipes the save and starts over.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, id, err := s.getOrCreateEntry(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.saves.Clear(ctx); err != nil {
		log.Printf("web: clear save %s: %v", id, err)
		http.Error(w, "failed to clear save", http.StatusInternalServerError)
		return
	}
	e.game = s.newGame(e.saves, save.Defaults())
	s.respond(w, id, e, Response{Message: "New game started."})
}

func (s *Server) newGame(saves *save.Controller, rec save.Record) *world.Game {
	c := s.Content
	if c == nil {
		c = content.Default()
	}
	cfg := c.WorldConfig()
	cfg.Rand = s.Rand
	cfg.Saver = saves
	return world.New(cfg, rec)
}

// getOrCreateEntry finds the caller's game, loading it from the save slot
// on first sight of the session.
func (s *Server) getOrCreateEntry(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Entry, string, error) {
	id := s.sessionID(r)
	if id == "" {
		id = s.Store.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()
	e, ok, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if ok {
		return e, id, nil
	}
	saves := save.NewController(s.Saves, save.KeyFor(id))
	e = &Entry{saves: saves, game: s.newGame(saves, saves.Load(ctx))}
	if err := s.Store.Put(ctx, id, e); err != nil {
		return nil, "", err
	}
	return e, id, nil
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
