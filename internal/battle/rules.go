package battle

import (
	"math"
	"time"

	"pocketgrove/internal/creature"
)

const (
	BasicMultiplier = 1.0
	SkillMultiplier = 1.4

	PotionHeal = 15

	// An enemy must be at or below this share of its max HP to be caught.
	CaptureThreshold = 0.5
	MaxCaptureChance = 0.95

	// After FleeStreak failed throws each further miss risks the enemy
	// running off with FleeChance.
	FleeStreak = 3
	FleeChance = 0.5

	MinRunChance = 0.2
	MaxRunChance = 0.9
)

// Presentation pacing before the pending enemy step should be resolved.
const (
	AttackDelay  = 600 * time.Millisecond
	PotionDelay  = 500 * time.Millisecond
	RunFailDelay = 300 * time.Millisecond
	SwapDelay    = 600 * time.Millisecond
)

// Damage is max(1, floor(atk*mult*elem - def*0.5)).
func Damage(att, def creature.Instance, mult float64, chart creature.Chart) int {
	raw := float64(att.Attack)*mult*chart.Multiplier(att.Element, def.Element) - float64(def.Defense)*0.5
	return max(1, int(math.Floor(raw)))
}

// RunChance is (playerSpeed - enemySpeed + 5) / 10 clamped to [0.2, 0.9].
func RunChance(playerSpeed, enemySpeed int) float64 {
	c := float64(playerSpeed-enemySpeed+5) / 10
	return math.Min(MaxRunChance, math.Max(MinRunChance, c))
}

// Capturable reports whether e is weak enough to throw a ball at.
func Capturable(e creature.Instance) bool {
	return float64(e.HP) <= float64(e.MaxHP)*CaptureThreshold
}

// CaptureChance is captureRate * (1 - hp/maxHP), kept within [0, 0.95].
func CaptureChance(e creature.Instance) float64 {
	if e.MaxHP <= 0 {
		return 0
	}
	p := e.CaptureRate * (1 - float64(e.HP)/float64(e.MaxHP))
	return math.Max(0, math.Min(MaxCaptureChance, p))
}
