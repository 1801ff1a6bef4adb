// Package encounter decides when a wild battle fires and which species
// shows up.
package encounter

import (
	"time"

	"pocketgrove/internal/creature"
	"pocketgrove/internal/rng"
)

// Kind is how a battle was started.
type Kind string

const (
	Random Kind = "random"
	Ambush Kind = "ambush"
	Duel   Kind = "npcDuel"
)

// TickInterval is how often the world runs CheckRandom.
const TickInterval = time.Second

const (
	DefaultRandomChance = 0.2
	DefaultAmbushChance = 0.6
)

// Zone is an axis-aligned spawn rectangle in world units.
type Zone struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// Contains is edge-inclusive.
func (z Zone) Contains(x, y float64) bool {
	return x >= z.X && x <= z.X+z.W && y >= z.Y && y <= z.Y+z.H
}

// Encounter is a battle waiting to start.
type Encounter struct {
	Kind    Kind
	Enemies []creature.Instance
}

// Rules holds the tunable encounter chances.
type Rules struct {
	RandomChance float64 `yaml:"randomChance"`
	AmbushChance float64 `yaml:"ambushChance"`
}

func DefaultRules() Rules {
	return Rules{RandomChance: DefaultRandomChance, AmbushChance: DefaultAmbushChance}
}

type Selector struct {
	Catalog *creature.Catalog
	Rand    rng.Source
	Rules   Rules
}

func NewSelector(cat *creature.Catalog, src rng.Source, rules Rules) *Selector {
	return &Selector{Catalog: cat, Rand: src, Rules: rules}
}

// PickWild draws a species weighted by rarity (Common 6, Uncommon 3,
// Rare 1), uniform within a tier.
func (s *Selector) PickWild() creature.Species {
	all := s.Catalog.All()
	total := 0
	for _, sp := range all {
		total += sp.Rarity.Weight()
	}
	n := s.Rand.Intn(total)
	for _, sp := range all {
		w := sp.Rarity.Weight()
		if n < w {
			return sp
		}
		n -= w
	}
	return all[len(all)-1]
}

// Wild builds a single-enemy encounter of the given kind.
func (s *Selector) Wild(kind Kind) Encounter {
	return Encounter{Kind: kind, Enemies: []creature.Instance{creature.FromSpecies(s.PickWild())}}
}

// CheckRandom is true when (x, y) lies in a zone and the roll succeeds.
// Nothing is drawn outside the zones.
func (s *Selector) CheckRandom(x, y float64, zones []Zone) bool {
	in := false
	for _, z := range zones {
		if z.Contains(x, y) {
			in = true
			break
		}
	}
	return in && rng.Chance(s.Rand, s.Rules.RandomChance)
}

// CheckAmbush rolls for a bush ambush; only call it on an explicit interact.
func (s *Selector) CheckAmbush() bool {
	return rng.Chance(s.Rand, s.Rules.AmbushChance)
}
