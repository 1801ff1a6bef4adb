// Package world is the orchestrator for one player's game: it owns the
// position, the PlayerState, the open dialog and the running battle, and
// turns intents from the presentation layer into rule calls and events.
//
// A Game is not safe for concurrent use; callers serialize access.
package world

import (
	"context"
	"errors"
	"fmt"
	"math"

	"pocketgrove/internal/battle"
	"pocketgrove/internal/creature"
	"pocketgrove/internal/dialog"
	"pocketgrove/internal/encounter"
	"pocketgrove/internal/party"
	"pocketgrove/internal/rng"
	"pocketgrove/internal/save"
)

var (
	ErrPaused     = errors.New("game is paused")
	ErrInBattle   = errors.New("a battle is in progress")
	ErrNoBattle   = errors.New("no battle in progress")
	ErrDialogOpen = errors.New("a dialog is open")
)

const RingReward = "Legendary Ring"

// Saver receives a snapshot after every world update.
type Saver interface {
	Persist(ctx context.Context, r save.Record)
}

type nopSaver struct{}

func (nopSaver) Persist(context.Context, save.Record) {}

// Config wires a Game. Zero fields get the built-in defaults; a nil Rules
// means the default chances, so zero chances can still be configured.
type Config struct {
	Layout  Layout
	Catalog *creature.Catalog
	Chart   creature.Chart
	Rules   *encounter.Rules
	Rand    rng.Source
	Saver   Saver
}

type Game struct {
	layout   Layout
	catalog  *creature.Catalog
	chart    creature.Chart
	rand     rng.Source
	selector *encounter.Selector
	saver    Saver

	x, y   float64
	player party.State
	paused bool

	dialog dialog.Queue
	battle *battle.Engine

	outbox []Event
}

// New starts a game from a save record.
func New(cfg Config, rec save.Record) *Game {
	if cfg.Layout.Width <= 0 {
		cfg.Layout = DefaultLayout()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = creature.DefaultCatalog()
	}
	if cfg.Chart == nil {
		cfg.Chart = creature.DefaultChart()
	}
	rules := encounter.DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}
	if cfg.Rand == nil {
		cfg.Rand = rng.Crypto{}
	}
	if cfg.Saver == nil {
		cfg.Saver = nopSaver{}
	}
	return &Game{
		layout:   cfg.Layout,
		catalog:  cfg.Catalog,
		chart:    cfg.Chart,
		rand:     cfg.Rand,
		selector: encounter.NewSelector(cfg.Catalog, cfg.Rand, rules),
		saver:    cfg.Saver,
		x:        rec.X,
		y:        rec.Y,
		player:   rec.Player.Clone(),
	}
}

func (g *Game) Layout() Layout { return g.layout }

func (g *Game) Position() (x, y float64) { return g.x, g.y }

func (g *Game) Paused() bool { return g.paused }

func (g *Game) InBattle() bool { return g.battle != nil }

// Player returns a copy of the PlayerState.
func (g *Game) Player() party.State { return g.player.Clone() }

// Record is the snapshot written to the save slot. Positions are stored
// as whole world units.
func (g *Game) Record() save.Record {
	return save.Record{X: math.Floor(g.x), Y: math.Floor(g.y), Player: g.player.Clone()}
}

// Drain hands over the events produced since the last call.
func (g *Game) Drain() []Event {
	out := g.outbox
	g.outbox = nil
	return out
}

func (g *Game) emit(ev ...Event) {
	g.outbox = append(g.outbox, ev...)
}

func (g *Game) persist(ctx context.Context) {
	g.saver.Persist(ctx, g.Record())
}

// Move places the player; the presentation layer owns the physics. The
// position is clamped to the map.
func (g *Game) Move(ctx context.Context, x, y float64) error {
	switch {
	case g.battle != nil:
		return ErrInBattle
	case g.paused:
		return ErrPaused
	}
	g.x = math.Max(0, math.Min(g.layout.Width, x))
	g.y = math.Max(0, math.Min(g.layout.Height, y))
	g.persist(ctx)
	return nil
}

// Tick is the once-per-second world update. It rolls for a random
// encounter when the player stands in a spawn zone.
func (g *Game) Tick(ctx context.Context) error {
	if g.paused || g.battle != nil {
		return nil
	}
	g.persist(ctx)
	if !g.selector.CheckRandom(g.x, g.y, g.layout.Zones) {
		return nil
	}
	return g.startBattle(ctx, g.selector.Wild(encounter.Random))
}

// Interact acts on the first interactable within reach. It reports which
// one was used; the kind is empty when nothing is nearby.
func (g *Game) Interact(ctx context.Context) (SpotKind, error) {
	switch {
	case g.battle != nil:
		return "", ErrInBattle
	case g.paused:
		return "", ErrPaused
	case g.dialog.Active():
		return "", ErrDialogOpen
	}
	it, ok := g.layout.Near(g.x, g.y)
	if !ok {
		return "", nil
	}

	switch it.Kind {
	case SpotHint:
		return it.Kind, g.showDialog(ctx, g.layout.HintLines, nil)
	case SpotDuel:
		enemies := make([]creature.Instance, 0, len(g.layout.DuelTeam))
		for _, id := range g.layout.DuelTeam {
			enemies = append(enemies, g.catalog.New(id))
		}
		return it.Kind, g.startBattle(ctx, encounter.Encounter{Kind: encounter.Duel, Enemies: enemies})
	case SpotRing:
		return it.Kind, g.ringNPC(ctx)
	case SpotBush:
		if g.selector.CheckAmbush() {
			return it.Kind, g.startBattle(ctx, g.selector.Wild(encounter.Ambush))
		}
		g.emit(Event{Kind: ToastEvent, Text: "Nothing in this bush..."})
		return it.Kind, nil
	}
	return "", fmt.Errorf("unknown interactable %q", it.Kind)
}

func (g *Game) ringNPC(ctx context.Context) error {
	switch g.player.RingCheck(g.x, g.layout.Width) {
	case party.RingOwned:
		return g.showDialog(ctx, []string{"You already have the ring. Congratulations!"}, nil)
	case party.RingEligible:
		// The grant honors where the player stood when the keeper was asked.
		at := g.x
		return g.showDialog(ctx, []string{"You made it to the end!", "This ring is for you."}, func(ctx context.Context) {
			if g.player.GrantRing(at, g.layout.Width) != party.RingEligible {
				return
			}
			g.emit(Event{Kind: RewardEvent, Text: RingReward})
			g.emit(g.hudEvent())
			g.persist(ctx)
		})
	default:
		return g.showDialog(ctx, []string{"Reach the end of the map with at least one creature to earn the ring."}, nil)
	}
}

func (g *Game) showDialog(ctx context.Context, lines []string, done func(context.Context)) error {
	if err := g.dialog.Show(ctx, lines, done); err != nil {
		return ErrDialogOpen
	}
	if line, ok := g.dialog.Current(); ok {
		g.emit(Event{Kind: DialogEvent, Text: line})
	}
	return nil
}

// NextDialog acknowledges the current line. It is a no-op without a dialog.
func (g *Game) NextDialog(ctx context.Context) {
	if !g.dialog.Active() {
		return
	}
	mark := len(g.outbox)
	line, ok := g.dialog.Next(ctx)
	// The line or close event goes ahead of anything the completion emitted.
	ev := Event{Kind: DialogEvent, Text: line, Closed: !ok}
	g.outbox = append(g.outbox[:mark], append([]Event{ev}, g.outbox[mark:]...)...)
}

// DialogLine is the line waiting for acknowledgment, if any.
func (g *Game) DialogLine() (string, bool) { return g.dialog.Current() }

// TogglePause flips the pause flag outside battles.
func (g *Game) TogglePause() error {
	if g.battle != nil {
		return ErrInBattle
	}
	g.paused = !g.paused
	text := "Resumed"
	if g.paused {
		text = "Paused"
	}
	g.emit(Event{Kind: ToastEvent, Text: text}, g.hudEvent())
	return nil
}

func (g *Game) startBattle(ctx context.Context, enc encounter.Encounter) error {
	b, err := battle.New(enc, &g.player, g.chart, g.rand)
	if err != nil {
		return fmt.Errorf("start %s battle: %w", enc.Kind, err)
	}
	g.battle = b
	snap := b.Snapshot()
	g.emit(Event{Kind: BattleStartEvent, Text: string(enc.Kind), Battle: &snap})
	return nil
}

// Battle returns a snapshot of the running battle.
func (g *Game) Battle() (battle.Snapshot, bool) {
	if g.battle == nil {
		return battle.Snapshot{}, false
	}
	return g.battle.Snapshot(), true
}

// Act forwards a player action to the running battle.
func (g *Game) Act(ctx context.Context, a battle.Action) (battle.Result, error) {
	if g.battle == nil {
		return battle.Result{}, ErrNoBattle
	}
	res, err := g.battle.Act(ctx, a)
	return g.afterStep(ctx, res, err)
}

// Resolve runs the pending enemy step of the running battle.
func (g *Game) Resolve(ctx context.Context) (battle.Result, error) {
	if g.battle == nil {
		return battle.Result{}, ErrNoBattle
	}
	res, err := g.battle.Resolve(ctx)
	return g.afterStep(ctx, res, err)
}

func (g *Game) afterStep(ctx context.Context, res battle.Result, err error) (battle.Result, error) {
	for _, ev := range res.Events {
		g.emit(fromBattle(ev))
	}
	if err != nil {
		return res, err
	}
	if res.Outcome != "" {
		g.endBattle(ctx, res.Outcome)
	}
	return res, nil
}

// endBattle returns to the world. A loss sends the player back to the
// checkpoint; the party half of the penalty was applied by the battle.
func (g *Game) endBattle(ctx context.Context, o battle.Outcome) {
	g.battle = nil
	if o == battle.Lose {
		g.x, g.y = g.layout.Start.X, g.layout.Start.Y
	}
	g.emit(Event{Kind: BattleEndEvent, Outcome: o}, g.hudEvent())
	g.persist(ctx)
}

// HUD is the world overlay state.
type HUD struct {
	HP       int     `json:"hp"`
	MaxHP    int     `json:"maxHp"`
	Coins    int     `json:"coins"`
	Potions  int     `json:"potions"`
	Balls    int     `json:"balls"`
	Team     string  `json:"team"`
	TeamSize int     `json:"teamSize"`
	GotRing  bool    `json:"gotRing"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Progress float64 `json:"progress"`
	Paused   bool    `json:"paused"`
	InBattle bool    `json:"inBattle"`
}

func (g *Game) HUD() HUD {
	return HUD{
		HP:       g.player.HP,
		MaxHP:    g.player.MaxHP,
		Coins:    g.player.Coins,
		Potions:  g.player.Items.Potion,
		Balls:    g.player.Items.Ball,
		Team:     g.player.Summary(),
		TeamSize: len(g.player.Team),
		GotRing:  g.player.GotRing,
		X:        g.x,
		Y:        g.y,
		Progress: g.layout.Progress(g.x),
		Paused:   g.paused,
		InBattle: g.battle != nil,
	}
}

func (g *Game) hudEvent() Event {
	h := g.HUD()
	return Event{Kind: HUDEvent, HUD: &h}
}
