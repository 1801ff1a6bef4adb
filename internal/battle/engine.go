// Package battle runs the turn-based fight between the player's party and
// one or more enemy creatures.
//
// The engine borrows the persistent party.State by pointer: potions, balls,
// coins and captures land there immediately. The fighting creatures
// themselves are copies, so HP lost in battle never leaks back into the
// saved team.
package battle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"pocketgrove/internal/creature"
	"pocketgrove/internal/encounter"
	"pocketgrove/internal/party"
	"pocketgrove/internal/rng"
)

type Action string

const (
	Attack  Action = "attack"
	Skill   Action = "skill"
	UseItem Action = "item"
	Run     Action = "run"
	Capture Action = "capture"
)

// Outcome is why a battle ended.
type Outcome string

const (
	Win       Outcome = "win"
	Lose      Outcome = "lose"
	Captured  Outcome = "captured"
	Ran       Outcome = "run"
	EnemyFled Outcome = "enemyFled"
)

// Turn states. Resolving means an enemy step is queued and waiting for
// Resolve; no player action is accepted until it has run.
const (
	StatePlayer    = "player"
	StateResolving = "resolving"
	StateEnemy     = "enemy"
	StateEnded     = "ended"
)

const (
	evHandOver = "hand_over"
	evEnemyAct = "enemy_act"
	evReturn   = "return"
	evChain    = "chain"
	evFinish   = "finish"
)

var (
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrNoPotion             = fmt.Errorf("%w: no potion", ErrInsufficientResource)
	ErrNoBall               = fmt.Errorf("%w: no capture ball", ErrInsufficientResource)
	ErrEnemyTooHealthy      = fmt.Errorf("%w: enemy hp too high", ErrInsufficientResource)

	ErrNotPlayerTurn  = errors.New("not the player's turn")
	ErrNothingPending = errors.New("no enemy action pending")
	ErrBattleOver     = errors.New("battle is over")
	ErrUnknownAction  = errors.New("unknown battle action")
	ErrNoEnemies      = errors.New("encounter has no enemies")
)

type Side string

const (
	PlayerSide Side = "player"
	EnemySide  Side = "enemy"
	Center     Side = "center"
)

type EventKind string

const (
	Popup        EventKind = "popup"
	SpriteChange EventKind = "sprite"
)

// Event is something the presentation layer should show.
type Event struct {
	Kind   EventKind `json:"kind"`
	Side   Side      `json:"side"`
	Text   string    `json:"text,omitempty"`
	Value  int       `json:"value,omitempty"`
	Color  string    `json:"color,omitempty"`
	Sprite string    `json:"sprite,omitempty"`
}

const (
	colorEnemyHit  = "#ff8080"
	colorPlayerHit = "#ffd480"
	colorHeal      = "#80ff80"
	colorCaptured  = "#80ffb0"
	colorWin       = "#b0ff80"
	colorNeutral   = "#ffffff"
)

// Result is what one engine step produced.
type Result struct {
	Events []Event
	// Pending is set when an enemy step is queued; call Resolve after Delay.
	Pending bool
	Delay   time.Duration
	Outcome Outcome
	// Message explains a rejected action.
	Message string
}

type Engine struct {
	kind   encounter.Kind
	player *party.State
	chart  creature.Chart
	rand   rng.Source
	fsm    *fsm.FSM

	playerTeam   []creature.Instance
	enemyTeam    []creature.Instance
	activePlayer int
	activeEnemy  int

	failCaptureStreak int
	outcome           Outcome
}

// New starts a battle. The player's team is copied; an empty team fights
// with the fallback Adventurer.
func New(enc encounter.Encounter, player *party.State, chart creature.Chart, src rng.Source) (*Engine, error) {
	if len(enc.Enemies) == 0 {
		return nil, ErrNoEnemies
	}
	e := &Engine{
		kind:   enc.Kind,
		player: player,
		chart:  chart,
		rand:   src,
	}
	if len(player.Team) > 0 {
		e.playerTeam = make([]creature.Instance, len(player.Team))
		copy(e.playerTeam, player.Team)
	} else {
		e.playerTeam = []creature.Instance{creature.Fallback()}
	}
	e.enemyTeam = make([]creature.Instance, len(enc.Enemies))
	copy(e.enemyTeam, enc.Enemies)
	if i := e.nextLivingPlayer(-1); i >= 0 {
		e.activePlayer = i
	}

	e.fsm = fsm.NewFSM(
		StatePlayer,
		fsm.Events{
			{Name: evHandOver, Src: []string{StatePlayer}, Dst: StateResolving},
			{Name: evEnemyAct, Src: []string{StateResolving}, Dst: StateEnemy},
			{Name: evReturn, Src: []string{StateEnemy}, Dst: StatePlayer},
			{Name: evChain, Src: []string{StateEnemy}, Dst: StateResolving},
			{Name: evFinish, Src: []string{StatePlayer, StateEnemy}, Dst: StateEnded},
		},
		fsm.Callbacks{},
	)
	return e, nil
}

func (e *Engine) Kind() encounter.Kind { return e.kind }

func (e *Engine) State() string { return e.fsm.Current() }

// Outcome is empty until the battle has ended.
func (e *Engine) Outcome() Outcome { return e.outcome }

func (e *Engine) Over() bool { return e.fsm.Current() == StateEnded }

// Pending reports whether Resolve has a queued enemy step to run.
func (e *Engine) Pending() bool { return e.fsm.Current() == StateResolving }

func (e *Engine) ActivePlayer() creature.Instance { return e.playerTeam[e.activePlayer] }

func (e *Engine) ActiveEnemy() creature.Instance { return e.enemyTeam[e.activeEnemy] }

// Act performs a player action. Rejected actions return a Message and an
// error wrapping ErrInsufficientResource; they cost nothing.
func (e *Engine) Act(ctx context.Context, a Action) (Result, error) {
	switch e.fsm.Current() {
	case StatePlayer:
	case StateEnded:
		return Result{Outcome: e.outcome}, ErrBattleOver
	default:
		return Result{Message: "Wait for your turn."}, ErrNotPlayerTurn
	}

	switch a {
	case Attack:
		return e.attack(ctx, BasicMultiplier)
	case Skill:
		return e.attack(ctx, SkillMultiplier)
	case UseItem:
		return e.usePotion(ctx)
	case Run:
		return e.tryRun(ctx)
	case Capture:
		return e.tryCapture(ctx)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
}

func (e *Engine) attack(ctx context.Context, mult float64) (Result, error) {
	var res Result
	p := &e.playerTeam[e.activePlayer]
	en := &e.enemyTeam[e.activeEnemy]

	dmg := Damage(*p, *en, mult, e.chart)
	en.TakeDamage(dmg)
	res.Events = append(res.Events, Event{Kind: Popup, Side: EnemySide, Text: fmt.Sprintf("-%d", dmg), Value: dmg, Color: colorEnemyHit})

	if !en.Fainted() {
		return res, e.handOver(ctx, &res, AttackDelay)
	}

	// The first fainted enemy decides the battle, whatever team is left.
	e.player.GrantWinReward()
	res.Events = append(res.Events, Event{
		Kind: Popup, Side: Center,
		Text:  fmt.Sprintf("Victory! +%d coins", party.WinReward),
		Value: party.WinReward, Color: colorWin,
	})
	return res, e.finish(ctx, &res, Win)
}

func (e *Engine) usePotion(ctx context.Context) (Result, error) {
	if !e.player.Consume(party.Potion) {
		return Result{Message: "No potions left!"}, ErrNoPotion
	}
	var res Result
	healed := e.playerTeam[e.activePlayer].Heal(PotionHeal)
	res.Events = append(res.Events, Event{Kind: Popup, Side: PlayerSide, Text: "+HP", Value: healed, Color: colorHeal})
	return res, e.handOver(ctx, &res, PotionDelay)
}

func (e *Engine) tryRun(ctx context.Context) (Result, error) {
	var res Result
	chance := RunChance(e.ActivePlayer().Speed, e.ActiveEnemy().Speed)
	if rng.Chance(e.rand, chance) {
		res.Events = append(res.Events, Event{Kind: Popup, Side: Center, Text: "Got away safely!", Color: colorNeutral})
		return res, e.finish(ctx, &res, Ran)
	}
	res.Events = append(res.Events, Event{Kind: Popup, Side: Center, Text: "Couldn't escape!", Color: colorNeutral})
	return res, e.handOver(ctx, &res, RunFailDelay)
}

func (e *Engine) tryCapture(ctx context.Context) (Result, error) {
	en := e.enemyTeam[e.activeEnemy]
	if !Capturable(en) {
		return Result{Message: "Enemy HP is too high!"}, ErrEnemyTooHealthy
	}
	if !e.player.Consume(party.Ball) {
		return Result{Message: "No balls left!"}, ErrNoBall
	}

	var res Result
	if rng.Chance(e.rand, CaptureChance(en)) {
		slot, replaced := e.player.InsertCaptured(en)
		text := fmt.Sprintf("%s was caught!", en.Name)
		if replaced {
			text = fmt.Sprintf("%s was caught and took slot %d!", en.Name, slot+1)
		}
		res.Events = append(res.Events, Event{Kind: Popup, Side: Center, Text: text, Color: colorCaptured})
		return res, e.finish(ctx, &res, Captured)
	}

	e.failCaptureStreak++
	if e.failCaptureStreak >= FleeStreak && rng.Chance(e.rand, FleeChance) {
		res.Events = append(res.Events, Event{Kind: Popup, Side: Center, Text: fmt.Sprintf("%s ran away!", en.Name), Color: colorNeutral})
		return res, e.finish(ctx, &res, EnemyFled)
	}
	res.Events = append(res.Events, Event{Kind: Popup, Side: Center, Text: "Capture failed!", Color: colorNeutral})
	return res, e.handOver(ctx, &res, 0)
}

// Resolve runs the queued enemy step: a basic attack on the active player
// creature. A fainted creature is replaced by the next living member and
// the enemy strikes again (another pending step); with nobody left the loss
// penalty is applied and the battle ends.
func (e *Engine) Resolve(ctx context.Context) (Result, error) {
	switch e.fsm.Current() {
	case StateResolving:
	case StateEnded:
		return Result{Outcome: e.outcome}, ErrBattleOver
	default:
		return Result{}, ErrNothingPending
	}
	if err := e.fsm.Event(ctx, evEnemyAct); err != nil {
		return Result{}, fmt.Errorf("enemy turn: %w", err)
	}

	var res Result
	p := &e.playerTeam[e.activePlayer]
	en := e.enemyTeam[e.activeEnemy]

	dmg := Damage(en, *p, BasicMultiplier, e.chart)
	p.TakeDamage(dmg)
	res.Events = append(res.Events, Event{Kind: Popup, Side: PlayerSide, Text: fmt.Sprintf("-%d", dmg), Value: dmg, Color: colorPlayerHit})

	if !p.Fainted() {
		if err := e.fsm.Event(ctx, evReturn); err != nil {
			return res, fmt.Errorf("return turn: %w", err)
		}
		return res, nil
	}

	res.Events = append(res.Events, Event{Kind: Popup, Side: Center, Text: fmt.Sprintf("%s fainted!", p.Name), Color: colorNeutral})
	if next := e.nextLivingPlayer(e.activePlayer); next >= 0 {
		e.activePlayer = next
		in := e.playerTeam[next]
		res.Events = append(res.Events, Event{Kind: SpriteChange, Side: PlayerSide, Text: in.Name, Sprite: in.Sprite()})
		if err := e.fsm.Event(ctx, evChain); err != nil {
			return res, fmt.Errorf("swap member: %w", err)
		}
		res.Pending = true
		res.Delay = SwapDelay
		return res, nil
	}

	e.player.ApplyLossPenalty()
	res.Events = append(res.Events, Event{
		Kind: Popup, Side: Center,
		Text:  fmt.Sprintf("You lost! -%d coins", party.LossCoinPenalty),
		Value: party.LossCoinPenalty, Color: colorNeutral,
	})
	return res, e.finish(ctx, &res, Lose)
}

func (e *Engine) handOver(ctx context.Context, res *Result, delay time.Duration) error {
	if err := e.fsm.Event(ctx, evHandOver); err != nil {
		return fmt.Errorf("hand over turn: %w", err)
	}
	res.Pending = true
	res.Delay = delay
	return nil
}

func (e *Engine) finish(ctx context.Context, res *Result, o Outcome) error {
	if err := e.fsm.Event(ctx, evFinish); err != nil {
		return fmt.Errorf("end battle: %w", err)
	}
	e.outcome = o
	res.Outcome = o
	res.Pending = false
	return nil
}

// nextLivingPlayer returns the first living team index after i, or -1.
func (e *Engine) nextLivingPlayer(i int) int {
	for j := i + 1; j < len(e.playerTeam); j++ {
		if !e.playerTeam[j].Fainted() {
			return j
		}
	}
	return -1
}

// Snapshot is a read-only view for the HUD.
type Snapshot struct {
	Kind              encounter.Kind    `json:"kind"`
	State             string            `json:"state"`
	Outcome           Outcome           `json:"outcome,omitempty"`
	Player            creature.Instance `json:"player"`
	Enemy             creature.Instance `json:"enemy"`
	PlayerIndex       int               `json:"playerIndex"`
	PlayerTeamSize    int               `json:"playerTeamSize"`
	EnemyIndex        int               `json:"enemyIndex"`
	EnemyTeamSize     int               `json:"enemyTeamSize"`
	FailCaptureStreak int               `json:"failCaptureStreak"`
	Potions           int               `json:"potions"`
	Balls             int               `json:"balls"`
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Kind:              e.kind,
		State:             e.fsm.Current(),
		Outcome:           e.outcome,
		Player:            e.ActivePlayer(),
		Enemy:             e.ActiveEnemy(),
		PlayerIndex:       e.activePlayer,
		PlayerTeamSize:    len(e.playerTeam),
		EnemyIndex:        e.activeEnemy,
		EnemyTeamSize:     len(e.enemyTeam),
		FailCaptureStreak: e.failCaptureStreak,
		Potions:           e.player.Items.Potion,
		Balls:             e.player.Items.Ball,
	}
}
