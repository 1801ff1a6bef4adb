// Package content loads the game's tunable data from YAML: the species
// roster, the type-effectiveness chart, the world layout and the
// encounter chances. Anything the file leaves out keeps its built-in value.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pocketgrove/internal/creature"
	"pocketgrove/internal/encounter"
	"pocketgrove/internal/world"
)

var ErrInvalidContent = errors.New("invalid content")

// File is the on-disk shape.
type File struct {
	Species       []creature.Species `yaml:"species"`
	Effectiveness creature.Chart     `yaml:"effectiveness"`
	World         world.Layout       `yaml:"world"`
	Encounters    encounter.Rules    `yaml:"encounters"`
}

type Content struct {
	Catalog *creature.Catalog
	Chart   creature.Chart
	Layout  world.Layout
	Rules   encounter.Rules
}

// Default is the built-in game content.
func Default() *Content {
	return &Content{
		Catalog: creature.DefaultCatalog(),
		Chart:   creature.DefaultChart(),
		Layout:  world.DefaultLayout(),
		Rules:   encounter.DefaultRules(),
	}
}

// Load reads a content file.
func Load(path string) (*Content, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // operator-supplied path, cleaned
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return c, nil
}

// Parse overlays YAML onto the defaults. Chart rows replace whole default
// rows; a species list replaces the whole roster.
func Parse(b []byte) (*Content, error) {
	f := File{
		Effectiveness: creature.DefaultChart(),
		World:         world.DefaultLayout(),
		Encounters:    encounter.DefaultRules(),
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	c := &Content{
		Catalog: creature.DefaultCatalog(),
		Chart:   f.Effectiveness,
		Layout:  f.World,
		Rules:   f.Encounters,
	}
	if len(f.Species) > 0 {
		cat, err := creature.NewCatalog(f.Species)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		c.Catalog = cat
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Content) validate() error {
	for att, row := range c.Chart {
		if !att.Valid() {
			return fmt.Errorf("%w: unknown element %q in chart", ErrInvalidContent, att)
		}
		for def, m := range row {
			if !def.Valid() || m <= 0 {
				return fmt.Errorf("%w: bad chart entry %s->%s", ErrInvalidContent, att, def)
			}
		}
	}

	r := c.Rules
	if r.RandomChance < 0 || r.RandomChance > 1 || r.AmbushChance < 0 || r.AmbushChance > 1 {
		return fmt.Errorf("%w: encounter chances must be within [0,1]", ErrInvalidContent)
	}

	l := c.Layout
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: world size %vx%v", ErrInvalidContent, l.Width, l.Height)
	}
	for i, z := range l.Zones {
		if z.W <= 0 || z.H <= 0 {
			return fmt.Errorf("%w: zone %d is empty", ErrInvalidContent, i)
		}
	}
	if len(l.DuelTeam) == 0 {
		return fmt.Errorf("%w: duel team is empty", ErrInvalidContent)
	}
	for _, id := range l.DuelTeam {
		if _, err := c.Catalog.Lookup(id); err != nil {
			return fmt.Errorf("%w: duel team: %v", ErrInvalidContent, err)
		}
	}
	return nil
}

// WorldConfig fills the content half of a world.Config.
func (c *Content) WorldConfig() world.Config {
	rules := c.Rules
	return world.Config{
		Layout:  c.Layout,
		Catalog: c.Catalog,
		Chart:   c.Chart,
		Rules:   &rules,
	}
}
