package world

import (
	"math"

	"pocketgrove/internal/encounter"
	"pocketgrove/internal/save"
)

type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Spot is an interaction point with a reach radius.
type Spot struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	R float64 `yaml:"r" json:"r"`
}

// Layout is the static shape of the side-scrolling map.
type Layout struct {
	Width  float64          `yaml:"width"`
	Height float64          `yaml:"height"`
	Start  Point            `yaml:"start"`
	Zones  []encounter.Zone `yaml:"zones"`

	Hint Spot `yaml:"hint"`
	Duel Spot `yaml:"duel"`
	Ring Spot `yaml:"ring"`

	// Bushes sit BushOffset units into each zone, on its top edge.
	BushOffset float64 `yaml:"bushOffset"`
	BushRadius float64 `yaml:"bushRadius"`

	DuelTeam  []string `yaml:"duelTeam"`
	HintLines []string `yaml:"hintLines"`
}

func DefaultLayout() Layout {
	const (
		width  = 3200.0
		height = 450.0
		npcY   = height - 64
	)
	zones := make([]encounter.Zone, 0, 4)
	for _, x := range []float64{200, 900, 1600, 2300} {
		zones = append(zones, encounter.Zone{X: x, Y: height - 120, W: 160, H: 88})
	}
	return Layout{
		Width:      width,
		Height:     height,
		Start:      Point{X: save.StartX, Y: save.StartY},
		Zones:      zones,
		Hint:       Spot{X: 500, Y: npcY, R: 40},
		Duel:       Spot{X: 1500, Y: npcY, R: 40},
		Ring:       Spot{X: width - 80, Y: npcY, R: 50},
		BushOffset: 40,
		BushRadius: 60,
		DuelTeam:   []string{"tengkukrock", "flarepup"},
		HintLines: []string{
			"Welcome to Pocket Grove!",
			"Tall bushes can trigger random encounters.",
			"Press E at a bush for a chance of an ambush.",
		},
	}
}

type SpotKind string

const (
	SpotHint SpotKind = "hint"
	SpotDuel SpotKind = "duel"
	SpotRing SpotKind = "ring"
	SpotBush SpotKind = "bush"
)

type Interactable struct {
	Kind SpotKind `json:"kind"`
	Spot
}

// Interactables lists the NPCs first, then one bush per zone.
func (l Layout) Interactables() []Interactable {
	out := []Interactable{
		{Kind: SpotHint, Spot: l.Hint},
		{Kind: SpotDuel, Spot: l.Duel},
		{Kind: SpotRing, Spot: l.Ring},
	}
	for _, z := range l.Zones {
		out = append(out, Interactable{Kind: SpotBush, Spot: Spot{X: z.X + l.BushOffset, Y: z.Y, R: l.BushRadius}})
	}
	return out
}

// Near returns the first interactable within reach of (x, y).
func (l Layout) Near(x, y float64) (Interactable, bool) {
	for _, it := range l.Interactables() {
		if math.Hypot(x-it.X, y-it.Y) < it.R {
			return it, true
		}
	}
	return Interactable{}, false
}

// Progress is x as a share of the map width, within [0, 1].
func (l Layout) Progress(x float64) float64 {
	if l.Width <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, x/l.Width))
}
