// Package party owns the player's persistent state: vitality, coins,
// items, the creature team and quest flags.
package party

import (
	"fmt"
	"strings"

	"pocketgrove/internal/creature"
)

const (
	TeamCapacity = 3

	WinReward         = 3
	LossCoinPenalty   = 2
	LossPotionPenalty = 1

	// RingBand is how close to the far edge of the map the ring NPC pays out.
	RingBand = 200.0
)

// ItemKind names an inventory slot.
type ItemKind string

const (
	Potion ItemKind = "potion"
	Ball   ItemKind = "ball"
)

type Items struct {
	Potion int `json:"potion"`
	Ball   int `json:"ball"`
}

// State is the single persistent player record. Battles borrow it by
// pointer and mutate coins, items and team directly.
type State struct {
	HP      int                 `json:"hp"`
	MaxHP   int                 `json:"maxHp"`
	Coins   int                 `json:"coins"`
	Items   Items               `json:"items"`
	Team    []creature.Instance `json:"team"`
	GotRing bool                `json:"gotRing"`
}

func NewState() State {
	return State{
		HP:    50,
		MaxHP: 50,
		Coins: 10,
		Items: Items{Potion: 2, Ball: 5},
		Team:  []creature.Instance{},
	}
}

// Clone returns a copy that shares no team storage with s.
func (s State) Clone() State {
	out := s
	out.Team = make([]creature.Instance, len(s.Team))
	copy(out.Team, s.Team)
	return out
}

func (s *State) Count(kind ItemKind) int {
	switch kind {
	case Potion:
		return s.Items.Potion
	case Ball:
		return s.Items.Ball
	default:
		return 0
	}
}

// Consume takes one item of kind if any is held.
func (s *State) Consume(kind ItemKind) bool {
	var n *int
	switch kind {
	case Potion:
		n = &s.Items.Potion
	case Ball:
		n = &s.Items.Ball
	default:
		return false
	}
	if *n <= 0 {
		return false
	}
	*n--
	return true
}

// ApplyLossPenalty costs a potion and two coins, neither going below zero.
// Sending the player back to the checkpoint is the world's half of the penalty.
func (s *State) ApplyLossPenalty() {
	s.Items.Potion = max(0, s.Items.Potion-LossPotionPenalty)
	s.Coins = max(0, s.Coins-LossCoinPenalty)
}

func (s *State) GrantWinReward() {
	s.Coins += WinReward
}

// InsertCaptured adds c to the team. A full team loses whatever sits in
// slot 0; there is no replace selection yet.
func (s *State) InsertCaptured(c creature.Instance) (slot int, replaced bool) {
	if len(s.Team) < TeamCapacity {
		s.Team = append(s.Team, c)
		return len(s.Team) - 1, false
	}
	s.Team[0] = c
	return 0, true
}

// RingStatus is the ring NPC's answer.
type RingStatus int

const (
	RingEligible RingStatus = iota
	RingOwned
	RingDenied
)

// RingCheck reports whether the player at x may receive the ring.
func (s *State) RingCheck(x, worldWidth float64) RingStatus {
	if s.GotRing {
		return RingOwned
	}
	if x > worldWidth-RingBand && len(s.Team) > 0 {
		return RingEligible
	}
	return RingDenied
}

// GrantRing sets the ring flag when RingCheck allows it. It is idempotent.
func (s *State) GrantRing(x, worldWidth float64) RingStatus {
	st := s.RingCheck(x, worldWidth)
	if st == RingEligible {
		s.GotRing = true
	}
	return st
}

// Summary renders the roster for the HUD, e.g. "1.Dewbud 12/32  2.Sparkit 26/26".
func (s *State) Summary() string {
	if len(s.Team) == 0 {
		return "No creatures"
	}
	parts := make([]string, 0, len(s.Team))
	for i, m := range s.Team {
		parts = append(parts, fmt.Sprintf("%d.%s %d/%d", i+1, m.Name, m.HP, m.MaxHP))
	}
	return strings.Join(parts, "  ")
}
