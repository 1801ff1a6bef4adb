package creature

// Element is a creature's elemental affinity.
type Element string

const (
	Grass    Element = "Grass"
	Rock     Element = "Rock"
	Fire     Element = "Fire"
	Water    Element = "Water"
	Electric Element = "Electric"
	// Neutral is only used by the player's fallback fighter.
	Neutral Element = "Neutral"
)

func (e Element) Valid() bool {
	switch e {
	case Grass, Rock, Fire, Water, Electric, Neutral:
		return true
	}
	return false
}

// Rarity decides how often a species turns up in the wild.
type Rarity string

const (
	Common   Rarity = "Common"
	Uncommon Rarity = "Uncommon"
	Rare     Rarity = "Rare"
)

// Weight is the rarity's share of the wild-encounter pool (6:3:1).
func (r Rarity) Weight() int {
	switch r {
	case Common:
		return 6
	case Uncommon:
		return 3
	case Rare:
		return 1
	default:
		return 0
	}
}

// Behavior is informational only; no rule reads it yet.
type Behavior string

const (
	Patrol     Behavior = "Patrol"
	Aggressive Behavior = "Aggressive"
	Ambush     Behavior = "Ambush"
)

// Species is an immutable catalog entry.
type Species struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Element     Element  `yaml:"element"`
	Rarity      Rarity   `yaml:"rarity"`
	BaseHP      int      `yaml:"baseHP"`
	BaseAttack  int      `yaml:"baseAttack"`
	BaseDefense int      `yaml:"baseDefense"`
	Speed       int      `yaml:"speed"`
	CaptureRate float64  `yaml:"captureRate"`
	Behavior    Behavior `yaml:"behavior"`
}

// Instance is a battle-ready creature. HP stays within [0, MaxHP].
type Instance struct {
	SpeciesID   string  `json:"id"`
	Name        string  `json:"name"`
	Element     Element `json:"element"`
	Rarity      Rarity  `json:"rarity,omitempty"`
	HP          int     `json:"hp"`
	MaxHP       int     `json:"maxHP"`
	Attack      int     `json:"attack"`
	Defense     int     `json:"defense"`
	Speed       int     `json:"speed"`
	CaptureRate float64 `json:"captureRate"`
}
