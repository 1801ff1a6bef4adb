package battle

import (
	"context"
	"errors"
	"testing"

	"pocketgrove/internal/creature"
	"pocketgrove/internal/encounter"
	"pocketgrove/internal/party"
	"pocketgrove/internal/rng"
)

var testCatalog = creature.DefaultCatalog()

func mon(id string, hp int) creature.Instance {
	m := testCatalog.New(id)
	if hp >= 0 {
		m.HP = hp
	}
	return m
}

func newTestBattle(t *testing.T, st *party.State, src rng.Source, enemies ...creature.Instance) *Engine {
	t.Helper()
	e, err := New(encounter.Encounter{Kind: encounter.Random, Enemies: enemies}, st, creature.DefaultChart(), src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestDamage(t *testing.T) {
	chart := creature.DefaultChart()
	semak := mon("semakmon", -1)
	dew := mon("dewbud", -1)

	// 8 * 1.0 * 1.5 - 6*0.5 = 9
	if got := Damage(semak, dew, BasicMultiplier, chart); got != 9 {
		t.Errorf("Expected basic damage 9, got %d", got)
	}
	// 8 * 1.4 * 1.5 - 3 = 13.8 -> 13
	if got := Damage(semak, dew, SkillMultiplier, chart); got != 13 {
		t.Errorf("Expected skill damage 13, got %d", got)
	}
}

func TestDamage_FloorOfOne(t *testing.T) {
	chart := creature.DefaultChart()
	weak := creature.Instance{Attack: 1, Element: creature.Fire}
	wall := creature.Instance{Defense: 100, Element: creature.Water}
	if got := Damage(weak, wall, BasicMultiplier, chart); got != 1 {
		t.Errorf("Expected damage floored to 1, got %d", got)
	}

	for _, a := range testCatalog.All() {
		for _, d := range testCatalog.All() {
			for _, mult := range []float64{BasicMultiplier, SkillMultiplier} {
				if got := Damage(creature.FromSpecies(a), creature.FromSpecies(d), mult, chart); got < 1 {
					t.Errorf("%s vs %s: damage %d below 1", a.ID, d.ID, got)
				}
			}
		}
	}
}

func TestRunChance(t *testing.T) {
	tests := []struct {
		ps, es int
		want   float64
	}{
		{10, 0, 0.9},
		{0, 10, 0.2},
		{6, 6, 0.5},
		{8, 5, 0.8},
	}
	for _, tt := range tests {
		if got := RunChance(tt.ps, tt.es); got != tt.want {
			t.Errorf("RunChance(%d, %d) = %v, want %v", tt.ps, tt.es, got, tt.want)
		}
	}
}

func TestCaptureChance(t *testing.T) {
	full := mon("semakmon", -1)
	if got := CaptureChance(full); got != 0 {
		t.Errorf("Expected 0 at full HP, got %v", got)
	}
	sure := creature.Instance{HP: 0, MaxHP: 10, CaptureRate: 1}
	if got := CaptureChance(sure); got != MaxCaptureChance {
		t.Errorf("Expected cap %v, got %v", MaxCaptureChance, got)
	}
	for hp := 0; hp <= 30; hp++ {
		p := CaptureChance(mon("semakmon", hp))
		if p < 0 || p > MaxCaptureChance {
			t.Errorf("hp %d: probability %v out of [0, 0.95]", hp, p)
		}
	}
}

func TestAttack_HandsOverThenResolves(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	e := newTestBattle(t, &st, &rng.Script{}, mon("flarepup", -1))

	res, err := e.Act(ctx, Attack)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	// Adventurer 6 atk vs flarepup 4 def: 6 - 2 = 4.
	if e.ActiveEnemy().HP != 24 {
		t.Errorf("Expected enemy HP 24, got %d", e.ActiveEnemy().HP)
	}
	if !res.Pending || res.Delay != AttackDelay {
		t.Errorf("Expected pending enemy step after %v, got pending=%v delay=%v", AttackDelay, res.Pending, res.Delay)
	}
	if e.State() != StateResolving {
		t.Errorf("Expected state %s, got %s", StateResolving, e.State())
	}

	// Player input during resolution is refused.
	if _, err := e.Act(ctx, Attack); !errors.Is(err, ErrNotPlayerTurn) {
		t.Errorf("Expected ErrNotPlayerTurn, got %v", err)
	}

	res, err = e.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Flarepup 12 atk vs adventurer 3 def: 12 - 1.5 = 10.
	if e.ActivePlayer().HP != 15 {
		t.Errorf("Expected player HP 15, got %d", e.ActivePlayer().HP)
	}
	if res.Pending || e.State() != StatePlayer {
		t.Errorf("Expected player turn after enemy attack, got state %s", e.State())
	}

	if _, err := e.Resolve(ctx); !errors.Is(err, ErrNothingPending) {
		t.Errorf("Expected ErrNothingPending, got %v", err)
	}
}

func TestAttack_Win(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	e := newTestBattle(t, &st, &rng.Script{}, mon("dewbud", 2))

	res, err := e.Act(ctx, Skill)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if res.Outcome != Win || e.Outcome() != Win || !e.Over() {
		t.Errorf("Expected win, got %q", res.Outcome)
	}
	if e.ActiveEnemy().HP != 0 {
		t.Errorf("Expected enemy HP clamped to 0, got %d", e.ActiveEnemy().HP)
	}
	if st.Coins != 13 {
		t.Errorf("Expected 13 coins after win, got %d", st.Coins)
	}
	if _, err := e.Act(ctx, Attack); !errors.Is(err, ErrBattleOver) {
		t.Errorf("Expected ErrBattleOver, got %v", err)
	}
}

func TestAttack_DuelEndsOnFirstFaint(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	e := newTestBattle(t, &st, &rng.Script{}, mon("tengkukrock", 1), mon("flarepup", -1))

	res, err := e.Act(ctx, Attack)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if res.Outcome != Win || !e.Over() {
		t.Fatalf("Expected win on the first faint, got outcome %q state %s", res.Outcome, e.State())
	}
	if res.Pending {
		t.Error("Expected no enemy step after a win")
	}
	if e.ActiveEnemy().SpeciesID != "tengkukrock" {
		t.Errorf("Expected tengkukrock to stay active, got %s", e.ActiveEnemy().SpeciesID)
	}
	if st.Coins != 13 {
		t.Errorf("Expected 13 coins after win, got %d", st.Coins)
	}
	if _, err := e.Act(ctx, Attack); !errors.Is(err, ErrBattleOver) {
		t.Errorf("Expected ErrBattleOver, got %v", err)
	}
}

func TestUsePotion(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	st.Team = append(st.Team, mon("dewbud", 10))
	e := newTestBattle(t, &st, &rng.Script{}, mon("semakmon", -1))

	res, err := e.Act(ctx, UseItem)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if e.ActivePlayer().HP != 25 {
		t.Errorf("Expected HP 25 after potion, got %d", e.ActivePlayer().HP)
	}
	if st.Items.Potion != 1 {
		t.Errorf("Expected 1 potion left, got %d", st.Items.Potion)
	}
	if !res.Pending || res.Delay != PotionDelay {
		t.Errorf("Expected potion to cost the turn, got pending=%v delay=%v", res.Pending, res.Delay)
	}
	// The persistent team keeps its own HP.
	if st.Team[0].HP != 10 {
		t.Errorf("Expected saved team HP untouched, got %d", st.Team[0].HP)
	}
}

func TestUsePotion_ClampsAndRejects(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	st.Items.Potion = 1
	st.Team = append(st.Team, mon("dewbud", 30))
	e := newTestBattle(t, &st, &rng.Script{}, mon("semakmon", -1))

	if _, err := e.Act(ctx, UseItem); err != nil {
		t.Fatalf("Act: %v", err)
	}
	if e.ActivePlayer().HP != e.ActivePlayer().MaxHP {
		t.Errorf("Expected HP clamped to %d, got %d", e.ActivePlayer().MaxHP, e.ActivePlayer().HP)
	}
	if _, err := e.Resolve(ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	res, err := e.Act(ctx, UseItem)
	if !errors.Is(err, ErrNoPotion) || !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("Expected ErrNoPotion, got %v", err)
	}
	if res.Message == "" {
		t.Error("Expected a message for the rejected potion")
	}
	if e.State() != StatePlayer {
		t.Errorf("Expected no turn cost, got state %s", e.State())
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	st.Team = append(st.Team, mon("sparkit", -1))

	// sparkit speed 10 vs tengkukrock 4: chance clamps to 0.9.
	e := newTestBattle(t, &st, &rng.Script{Floats: []float64{0.89}}, mon("tengkukrock", -1))
	res, err := e.Act(ctx, Run)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if res.Outcome != Ran {
		t.Errorf("Expected run outcome, got %q", res.Outcome)
	}

	e = newTestBattle(t, &st, &rng.Script{Floats: []float64{0.9}}, mon("tengkukrock", -1))
	res, err = e.Act(ctx, Run)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if res.Outcome != "" || !res.Pending || res.Delay != RunFailDelay {
		t.Errorf("Expected failed run to hand the enemy an attack, got %+v", res)
	}
	if _, err := e.Resolve(ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.State() != StatePlayer {
		t.Errorf("Expected player turn after the unanswered attack, got %s", e.State())
	}
}

func TestCapture_RejectedAtFullHP(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	src := &rng.Script{Floats: []float64{0}}
	e := newTestBattle(t, &st, src, mon("semakmon", -1))

	res, err := e.Act(ctx, Capture)
	if !errors.Is(err, ErrEnemyTooHealthy) {
		t.Fatalf("Expected ErrEnemyTooHealthy, got %v", err)
	}
	if res.Message == "" {
		t.Error("Expected a rejection message")
	}
	if st.Items.Ball != 5 {
		t.Errorf("Expected no ball consumed, got %d", st.Items.Ball)
	}
	if src.FloatsUsed() != 0 {
		t.Error("Expected no random draw for a rejected capture")
	}
	if e.State() != StatePlayer {
		t.Errorf("Expected no turn cost, got %s", e.State())
	}
}

func TestCapture_NoBalls(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	st.Items.Ball = 0
	e := newTestBattle(t, &st, &rng.Script{}, mon("semakmon", 5))

	if _, err := e.Act(ctx, Capture); !errors.Is(err, ErrNoBall) {
		t.Fatalf("Expected ErrNoBall, got %v", err)
	}
	if e.State() != StatePlayer {
		t.Errorf("Expected no turn cost, got %s", e.State())
	}
}

func TestCapture_Success(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	e := newTestBattle(t, &st, &rng.Script{Floats: []float64{0.1}}, mon("semakmon", 15))

	res, err := e.Act(ctx, Capture)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if res.Outcome != Captured {
		t.Fatalf("Expected captured, got %q", res.Outcome)
	}
	if st.Items.Ball != 4 {
		t.Errorf("Expected 4 balls left, got %d", st.Items.Ball)
	}
	if len(st.Team) != 1 || st.Team[0].SpeciesID != "semakmon" || st.Team[0].HP != 15 {
		t.Errorf("Expected captured semakmon with 15 HP in team, got %+v", st.Team)
	}
}

func TestCapture_FullTeamOverwritesSlotZero(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	st.Team = append(st.Team, mon("dewbud", -1), mon("mossling", -1), mon("sparkit", -1))
	e := newTestBattle(t, &st, &rng.Script{Floats: []float64{0}}, mon("flarepup", 1))

	if _, err := e.Act(ctx, Capture); err != nil {
		t.Fatalf("Act: %v", err)
	}
	if len(st.Team) != party.TeamCapacity {
		t.Fatalf("Expected team of %d, got %d", party.TeamCapacity, len(st.Team))
	}
	if st.Team[0].SpeciesID != "flarepup" {
		t.Errorf("Expected flarepup in slot 0, got %s", st.Team[0].SpeciesID)
	}
}

func TestCapture_ThreeFailsThenFlee(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	// Three failed throws, then a flee roll under 0.5.
	src := &rng.Script{Floats: []float64{0.99, 0.99, 0.99, 0.4}}
	e := newTestBattle(t, &st, src, mon("dewbud", 1))

	for i := 0; i < 2; i++ {
		res, err := e.Act(ctx, Capture)
		if err != nil {
			t.Fatalf("capture %d: %v", i+1, err)
		}
		if res.Outcome != "" || !res.Pending {
			t.Fatalf("capture %d: expected failure with enemy attack, got %+v", i+1, res)
		}
		if _, err := e.Resolve(ctx); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}

	res, err := e.Act(ctx, Capture)
	if err != nil {
		t.Fatalf("capture 3: %v", err)
	}
	if res.Outcome != EnemyFled {
		t.Fatalf("Expected enemyFled, got %q", res.Outcome)
	}
	if st.Items.Ball != 2 {
		t.Errorf("Expected 2 balls left, got %d", st.Items.Ball)
	}
	if _, err := e.Act(ctx, Capture); !errors.Is(err, ErrBattleOver) {
		t.Errorf("Expected ErrBattleOver, got %v", err)
	}
	if st.Items.Ball != 2 {
		t.Errorf("Expected no further ball consumed, got %d", st.Items.Ball)
	}
}

func TestCapture_StreakWithoutFlee(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	src := &rng.Script{Floats: []float64{0.99, 0.99, 0.99, 0.5}}
	e := newTestBattle(t, &st, src, mon("dewbud", 1))

	for i := 0; i < 3; i++ {
		res, err := e.Act(ctx, Capture)
		if err != nil {
			t.Fatalf("capture %d: %v", i+1, err)
		}
		if res.Outcome != "" {
			t.Fatalf("capture %d: expected battle to continue, got %q", i+1, res.Outcome)
		}
		if _, err := e.Resolve(ctx); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if got := e.Snapshot().FailCaptureStreak; got != 3 {
		t.Errorf("Expected streak 3, got %d", got)
	}
}

func TestEnemyTurn_FaintSwapChains(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	st.Team = append(st.Team, mon("dewbud", 1), mon("semakmon", -1))
	e := newTestBattle(t, &st, &rng.Script{}, mon("flarepup", -1))

	if _, err := e.Act(ctx, Attack); err != nil {
		t.Fatalf("Act: %v", err)
	}
	// Fire vs Water: 12*0.5 - 3 = 3, dewbud faints.
	res, err := e.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.ActivePlayer().SpeciesID != "semakmon" {
		t.Fatalf("Expected semakmon swapped in, got %s", e.ActivePlayer().SpeciesID)
	}
	if !res.Pending || res.Delay != SwapDelay {
		t.Errorf("Expected chained enemy attack, got pending=%v delay=%v", res.Pending, res.Delay)
	}
	if _, err := e.Act(ctx, Attack); !errors.Is(err, ErrNotPlayerTurn) {
		t.Errorf("Expected ErrNotPlayerTurn during chain, got %v", err)
	}

	// Fire vs Grass: 18 - 2.5 = 15.
	if _, err := e.Resolve(ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.ActivePlayer().HP != 15 {
		t.Errorf("Expected semakmon at 15 HP, got %d", e.ActivePlayer().HP)
	}
	if e.State() != StatePlayer {
		t.Errorf("Expected player turn, got %s", e.State())
	}
	if st.Team[0].HP != 1 || st.Team[1].HP != 30 {
		t.Errorf("Expected saved team untouched, got %+v", st.Team)
	}
}

func TestEnemyTurn_LastMemberFaintsLoses(t *testing.T) {
	ctx := context.Background()
	st := party.NewState()
	st.Coins = 1
	e := newTestBattle(t, &st, &rng.Script{}, mon("flarepup", -1))

	var res Result
	for i := 0; i < 3; i++ {
		if _, err := e.Act(ctx, Attack); err != nil {
			t.Fatalf("Act %d: %v", i+1, err)
		}
		var err error
		res, err = e.Resolve(ctx)
		if err != nil {
			t.Fatalf("Resolve %d: %v", i+1, err)
		}
	}
	if res.Outcome != Lose || e.Outcome() != Lose {
		t.Fatalf("Expected lose, got %q", res.Outcome)
	}
	if e.ActivePlayer().HP != 0 {
		t.Errorf("Expected player HP clamped to 0, got %d", e.ActivePlayer().HP)
	}
	if st.Coins != 0 || st.Items.Potion != 1 {
		t.Errorf("Expected penalty once (coins 0, potion 1), got coins=%d potion=%d", st.Coins, st.Items.Potion)
	}
	if _, err := e.Resolve(ctx); !errors.Is(err, ErrBattleOver) {
		t.Errorf("Expected ErrBattleOver, got %v", err)
	}
	if st.Items.Potion != 1 {
		t.Errorf("Expected penalty applied exactly once, got potion=%d", st.Items.Potion)
	}
}

func TestAct_UnknownAction(t *testing.T) {
	st := party.NewState()
	e := newTestBattle(t, &st, &rng.Script{}, mon("dewbud", -1))
	if _, err := e.Act(context.Background(), "dance"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}
}

func TestNew_NoEnemies(t *testing.T) {
	st := party.NewState()
	_, err := New(encounter.Encounter{Kind: encounter.Random}, &st, creature.DefaultChart(), &rng.Script{})
	if !errors.Is(err, ErrNoEnemies) {
		t.Errorf("Expected ErrNoEnemies, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	st := party.NewState()
	e := newTestBattle(t, &st, &rng.Script{}, mon("tengkukrock", -1), mon("flarepup", -1))
	snap := e.Snapshot()
	if snap.Player.SpeciesID != creature.FallbackID {
		t.Errorf("Expected fallback fighter, got %s", snap.Player.SpeciesID)
	}
	if snap.EnemyTeamSize != 2 || snap.Enemy.SpeciesID != "tengkukrock" {
		t.Errorf("Unexpected enemy view: %+v", snap)
	}
	if snap.State != StatePlayer || snap.Potions != 2 || snap.Balls != 5 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
}
