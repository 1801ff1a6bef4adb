// Package save persists the player's progress: world position plus the
// party state. A missing or unreadable record silently becomes the
// defaults; a failed write only costs durability until the next write.
package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"pocketgrove/internal/creature"
	"pocketgrove/internal/party"
	"pocketgrove/internal/session"
)

// Key is the fixed slot name of the save record.
const Key = "pocket-grove-save-v1"

// The checkpoint: every new game and every lost battle starts here.
const (
	StartX = 50.0
	StartY = 200.0
)

var ErrSaveCorrupt = errors.New("corrupt save record")

type Record struct {
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Player party.State `json:"playerState"`
}

func Defaults() Record {
	return Record{X: StartX, Y: StartY, Player: party.NewState()}
}

func Encode(r Record) ([]byte, error) {
	return json.Marshal(r)
}

type rawItems struct {
	Potion *int `json:"potion"`
	Ball   *int `json:"ball"`
}

type rawPlayer struct {
	HP      *int             `json:"hp"`
	MaxHP   *int             `json:"maxHp"`
	Coins   *int             `json:"coins"`
	Items   *rawItems        `json:"items"`
	Team    []creature.Saved `json:"team"`
	GotRing bool             `json:"gotRing"`
}

type rawRecord struct {
	X      *float64   `json:"x"`
	Y      *float64   `json:"y"`
	Player *rawPlayer `json:"playerState"`
}

// Decode parses and checks a stored record. Any structural problem is
// reported as ErrSaveCorrupt.
func Decode(b []byte) (Record, error) {
	var raw rawRecord
	if err := json.Unmarshal(b, &raw); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrSaveCorrupt, err)
	}
	p := raw.Player
	switch {
	case raw.X == nil || raw.Y == nil:
		return Record{}, fmt.Errorf("%w: missing position", ErrSaveCorrupt)
	case p == nil:
		return Record{}, fmt.Errorf("%w: missing playerState", ErrSaveCorrupt)
	case p.HP == nil || p.MaxHP == nil || p.Coins == nil:
		return Record{}, fmt.Errorf("%w: missing player stats", ErrSaveCorrupt)
	case p.Items == nil || p.Items.Potion == nil || p.Items.Ball == nil:
		return Record{}, fmt.Errorf("%w: missing items", ErrSaveCorrupt)
	case *p.Coins < 0 || *p.Items.Potion < 0 || *p.Items.Ball < 0:
		return Record{}, fmt.Errorf("%w: negative counts", ErrSaveCorrupt)
	case len(p.Team) > party.TeamCapacity:
		return Record{}, fmt.Errorf("%w: team of %d", ErrSaveCorrupt, len(p.Team))
	}

	team := make([]creature.Instance, 0, len(p.Team))
	for _, s := range p.Team {
		in, err := creature.Restore(s)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrSaveCorrupt, err)
		}
		team = append(team, in)
	}

	return Record{
		X: *raw.X,
		Y: *raw.Y,
		Player: party.State{
			HP:      *p.HP,
			MaxHP:   *p.MaxHP,
			Coins:   *p.Coins,
			Items:   party.Items{Potion: *p.Items.Potion, Ball: *p.Items.Ball},
			Team:    team,
			GotRing: p.GotRing,
		},
	}, nil
}

// KeyFor scopes the save slot to one installation (browser session).
func KeyFor(id string) string {
	return Key + ":" + id
}

// Controller reads and writes one save slot.
type Controller struct {
	store session.Store[[]byte]
	key   string
}

// NewController binds store and slot key; an empty key means Key.
func NewController(store session.Store[[]byte], key string) *Controller {
	if key == "" {
		key = Key
	}
	return &Controller{store: store, key: key}
}

func (c *Controller) Key() string { return c.key }

// Persist overwrites the slot with r. Errors are logged and dropped.
func (c *Controller) Persist(ctx context.Context, r Record) {
	b, err := Encode(r)
	if err != nil {
		log.Printf("save: encode %s: %v", c.key, err)
		return
	}
	if err := c.store.Put(ctx, c.key, b); err != nil {
		log.Printf("save: write %s: %v", c.key, err)
	}
}

// Restore returns the stored record, or false when there is none or it
// cannot be read.
func (c *Controller) Restore(ctx context.Context) (Record, bool) {
	b, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		log.Printf("save: read %s: %v", c.key, err)
		return Record{}, false
	}
	if !ok {
		return Record{}, false
	}
	r, err := Decode(b)
	if err != nil {
		log.Printf("save: discard %s: %v", c.key, err)
		return Record{}, false
	}
	return r, true
}

// Load is Restore falling back to Defaults.
func (c *Controller) Load(ctx context.Context) Record {
	if r, ok := c.Restore(ctx); ok {
		return r
	}
	return Defaults()
}

// Clear wipes the slot so the next Load starts a new game.
func (c *Controller) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, c.key)
}
