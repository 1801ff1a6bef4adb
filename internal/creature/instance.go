package creature

import (
	"errors"
	"fmt"
)

// ErrSaveCorrupt marks saved creature data that cannot be restored.
var ErrSaveCorrupt = errors.New("corrupt saved creature")

// FallbackID identifies the stand-in fighter used when the team is empty.
const FallbackID = "default"

// New builds a fresh instance of the species with the given id. Unknown ids
// get the catalog's first species instead.
func (c *Catalog) New(id string) Instance {
	sp, err := c.Lookup(id)
	if err != nil {
		sp = c.First()
	}
	return FromSpecies(sp)
}

func FromSpecies(sp Species) Instance {
	return Instance{
		SpeciesID:   sp.ID,
		Name:        sp.Name,
		Element:     sp.Element,
		Rarity:      sp.Rarity,
		HP:          sp.BaseHP,
		MaxHP:       sp.BaseHP,
		Attack:      sp.BaseAttack,
		Defense:     sp.BaseDefense,
		Speed:       sp.Speed,
		CaptureRate: sp.CaptureRate,
	}
}

// Fallback is the Adventurer who fights when the player owns no creatures.
func Fallback() Instance {
	return Instance{
		SpeciesID: FallbackID,
		Name:      "Adventurer",
		Element:   Neutral,
		HP:        25,
		MaxHP:     25,
		Attack:    6,
		Defense:   3,
		Speed:     6,
	}
}

// Saved is the loose shape of a creature read back from storage; nil
// pointers are fields the record did not carry.
type Saved struct {
	ID          *string  `json:"id"`
	Name        *string  `json:"name"`
	Element     *string  `json:"element"`
	Rarity      string   `json:"rarity"`
	HP          *int     `json:"hp"`
	MaxHP       *int     `json:"maxHP"`
	Attack      *int     `json:"attack"`
	Defense     *int     `json:"defense"`
	Speed       *int     `json:"speed"`
	CaptureRate *float64 `json:"captureRate"`
}

// Restore passes saved fields through unchanged, checking only that they
// are all present and structurally sane.
func Restore(s Saved) (Instance, error) {
	switch {
	case s.ID == nil || *s.ID == "":
		return Instance{}, fmt.Errorf("%w: missing id", ErrSaveCorrupt)
	case s.Name == nil:
		return Instance{}, fmt.Errorf("%w: %s: missing name", ErrSaveCorrupt, *s.ID)
	case s.Element == nil || !Element(*s.Element).Valid():
		return Instance{}, fmt.Errorf("%w: %s: bad element", ErrSaveCorrupt, *s.ID)
	case s.HP == nil || s.MaxHP == nil || s.Attack == nil || s.Defense == nil || s.Speed == nil:
		return Instance{}, fmt.Errorf("%w: %s: missing stats", ErrSaveCorrupt, *s.ID)
	case *s.MaxHP <= 0 || *s.HP < 0 || *s.HP > *s.MaxHP:
		return Instance{}, fmt.Errorf("%w: %s: hp %d/%d", ErrSaveCorrupt, *s.ID, *s.HP, *s.MaxHP)
	}
	in := Instance{
		SpeciesID: *s.ID,
		Name:      *s.Name,
		Element:   Element(*s.Element),
		Rarity:    Rarity(s.Rarity),
		HP:        *s.HP,
		MaxHP:     *s.MaxHP,
		Attack:    *s.Attack,
		Defense:   *s.Defense,
		Speed:     *s.Speed,
	}
	if s.CaptureRate != nil {
		in.CaptureRate = *s.CaptureRate
	}
	return in, nil
}

// TakeDamage lowers HP by n, never below zero.
func (in *Instance) TakeDamage(n int) {
	in.HP -= n
	if in.HP < 0 {
		in.HP = 0
	}
}

// Heal raises HP by n, never above MaxHP, and reports the amount restored.
func (in *Instance) Heal(n int) int {
	before := in.HP
	in.HP += n
	if in.HP > in.MaxHP {
		in.HP = in.MaxHP
	}
	return in.HP - before
}

func (in Instance) Fainted() bool { return in.HP <= 0 }

// Sprite is the texture key the presentation layer draws for this creature.
func (in Instance) Sprite() string {
	if in.SpeciesID == FallbackID {
		return "player"
	}
	return in.SpeciesID
}
