package world

import "pocketgrove/internal/battle"

type EventKind string

const (
	HUDEvent         EventKind = "hud"
	DialogEvent      EventKind = "dialog"
	PopupEvent       EventKind = "popup"
	ToastEvent       EventKind = "toast"
	RewardEvent      EventKind = "reward"
	BattleStartEvent EventKind = "battleStart"
	BattleEndEvent   EventKind = "battleEnd"
	SpriteEvent      EventKind = "sprite"
)

// Event is what the presentation layer is told about. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind    EventKind        `json:"kind"`
	Text    string           `json:"text,omitempty"`
	Side    battle.Side      `json:"side,omitempty"`
	Value   int              `json:"value,omitempty"`
	Color   string           `json:"color,omitempty"`
	Sprite  string           `json:"sprite,omitempty"`
	Closed  bool             `json:"closed,omitempty"`
	Outcome battle.Outcome   `json:"outcome,omitempty"`
	HUD     *HUD             `json:"hud,omitempty"`
	Battle  *battle.Snapshot `json:"battle,omitempty"`
}

func fromBattle(ev battle.Event) Event {
	kind := PopupEvent
	if ev.Kind == battle.SpriteChange {
		kind = SpriteEvent
	}
	return Event{
		Kind:   kind,
		Text:   ev.Text,
		Side:   ev.Side,
		Value:  ev.Value,
		Color:  ev.Color,
		Sprite: ev.Sprite,
	}
}
