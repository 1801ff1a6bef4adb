// Package creature holds the species catalog, the type-effectiveness chart
// and the factory that turns catalog entries or saved data into instances.
package creature

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrInvalidSpeciesID = errors.New("unknown species id")
	ErrEmptyCatalog     = errors.New("catalog has no species")
)

// Catalog is a read-only, ordered species table.
type Catalog struct {
	species []Species
	index   map[string]int
}

// NewCatalog validates list and indexes it by id. Species without a name
// get one derived from the id.
func NewCatalog(list []Species) (*Catalog, error) {
	if len(list) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		species: make([]Species, 0, len(list)),
		index:   make(map[string]int, len(list)),
	}
	for _, sp := range list {
		if sp.ID == "" {
			return nil, errors.New("species with empty id")
		}
		if _, dup := c.index[sp.ID]; dup {
			return nil, fmt.Errorf("duplicate species id: %s", sp.ID)
		}
		if sp.CaptureRate <= 0 || sp.CaptureRate > 1 {
			return nil, fmt.Errorf("species %s: capture rate %v outside (0,1]", sp.ID, sp.CaptureRate)
		}
		if !sp.Element.Valid() || sp.Element == Neutral {
			return nil, fmt.Errorf("species %s: unsupported element %q", sp.ID, sp.Element)
		}
		if sp.Rarity.Weight() == 0 {
			return nil, fmt.Errorf("species %s: unknown rarity %q", sp.ID, sp.Rarity)
		}
		if sp.BaseHP <= 0 {
			return nil, fmt.Errorf("species %s: base hp must be positive", sp.ID)
		}
		if strings.TrimSpace(sp.Name) == "" {
			sp.Name = displayName(sp.ID)
		}
		c.index[sp.ID] = len(c.species)
		c.species = append(c.species, sp)
	}
	return c, nil
}

// DefaultCatalog is the built-in Pocket Grove roster.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultSpecies())
	if err != nil {
		panic(err)
	}
	return c
}

func DefaultSpecies() []Species {
	return []Species{
		{ID: "semakmon", Name: "Semakmon", Element: Grass, Rarity: Common, BaseHP: 30, BaseAttack: 8, BaseDefense: 5, Speed: 6, CaptureRate: 0.6, Behavior: Patrol},
		{ID: "tengkukrock", Name: "Tengkukrock", Element: Rock, Rarity: Uncommon, BaseHP: 40, BaseAttack: 7, BaseDefense: 12, Speed: 4, CaptureRate: 0.45, Behavior: Patrol},
		{ID: "flarepup", Name: "Flarepup", Element: Fire, Rarity: Rare, BaseHP: 28, BaseAttack: 12, BaseDefense: 4, Speed: 8, CaptureRate: 0.35, Behavior: Aggressive},
		{ID: "dewbud", Name: "Dewbud", Element: Water, Rarity: Common, BaseHP: 32, BaseAttack: 7, BaseDefense: 6, Speed: 7, CaptureRate: 0.55, Behavior: Patrol},
		{ID: "mossling", Name: "Mossling", Element: Grass, Rarity: Uncommon, BaseHP: 34, BaseAttack: 9, BaseDefense: 7, Speed: 6, CaptureRate: 0.5, Behavior: Ambush},
		{ID: "sparkit", Name: "Sparkit", Element: Electric, Rarity: Rare, BaseHP: 26, BaseAttack: 11, BaseDefense: 5, Speed: 10, CaptureRate: 0.3, Behavior: Aggressive},
	}
}

// All returns a copy of the species in catalog order.
func (c *Catalog) All() []Species {
	out := make([]Species, len(c.species))
	copy(out, c.species)
	return out
}

func (c *Catalog) Len() int { return len(c.species) }

func (c *Catalog) First() Species { return c.species[0] }

func (c *Catalog) Lookup(id string) (Species, error) {
	i, ok := c.index[id]
	if !ok {
		return Species{}, fmt.Errorf("%w: %s", ErrInvalidSpeciesID, id)
	}
	return c.species[i], nil
}

// displayName turns "flare_pup" into "Flare Pup".
func displayName(id string) string {
	words := strings.ReplaceAll(strings.ReplaceAll(id, "_", " "), "-", " ")
	return cases.Title(language.English).String(words)
}
