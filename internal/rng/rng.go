// Package rng provides the uniform random source used by every rule draw
// (encounters, run attempts, captures, flee rolls).
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
)

// Source yields independent uniform draws.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n). n <= 0 yields 0.
	Intn(n int) int
}

// Chance reports whether a single draw from src lands below p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Crypto draws from crypto/rand; plenty for a pocket game.
type Crypto struct{}

func (Crypto) Float64() float64 {
	// 53 random bits mapped onto [0,1)
	return float64(next()>>11) / (1 << 53)
}

func (Crypto) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func next() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// Script replays fixed draws in order. Once a list is exhausted its last
// value repeats (zero when the list is empty). Useful for replays and tests.
type Script struct {
	Floats []float64
	Ints   []int

	fi, ii int
}

func (s *Script) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	if s.fi >= len(s.Floats) {
		return s.Floats[len(s.Floats)-1]
	}
	v := s.Floats[s.fi]
	s.fi++
	return v
}

func (s *Script) Intn(n int) int {
	if n <= 0 || len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[len(s.Ints)-1]
	if s.ii < len(s.Ints) {
		v = s.Ints[s.ii]
		s.ii++
	}
	if v < 0 {
		v = 0
	}
	return v % n
}

// FloatsUsed reports how many float draws have been consumed.
func (s *Script) FloatsUsed() int {
	return s.fi
}
