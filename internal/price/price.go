// Package price holds the clamped min/max price filter.
package price

import (
	"errors"
	"strconv"
	"strings"

	"hotelsearch/internal/querystate"
)

const (
	Min  = 20000
	Max  = 10000000
	Step = 10000
)

// Endpoint indexes accepted by SetEndpoint.
const (
	IndexMin = 0
	IndexMax = 1
)

// Range is a min/max price pair.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Clamp bounds v to [Min, Max].
func Clamp(v int) int {
	return min(max(v, Min), Max)
}

// Read returns the stored pair, falling back to the bounds for absent or
// unreadable values. The min<=max invariant is enforced on write only.
func Read(store *querystate.Store) Range {
	return Range{
		Min: readBound(store, querystate.KeyMinPrice, Min),
		Max: readBound(store, querystate.KeyMaxPrice, Max),
	}
}

func readBound(store *querystate.Store, key string, fallback int) int {
	raw, ok := store.Get(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return Clamp(v)
}

// State edits the price pair stored in the address.
type State struct {
	store *querystate.Store
}

// NewState binds a price editor to store.
func NewState(store *querystate.Store) *State {
	return &State{store: store}
}

// Range returns the current pair with display defaults applied.
func (s *State) Range() Range {
	return Read(s.store)
}

// SetEndpoint replaces one end of the range with the digits found in raw.
// Input without digits, an unknown index, or a result with min > max is
// ignored and the stored pair stays as it was. Returns true when committed.
func (s *State) SetEndpoint(index int, raw string) bool {
	v, ok := parseDigits(raw)
	if !ok {
		return false
	}
	v = Clamp(v)

	next := s.Range()
	switch index {
	case IndexMin:
		next.Min = v
	case IndexMax:
		next.Max = v
	default:
		return false
	}
	if next.Min > next.Max {
		return false
	}

	s.store.Set(querystate.Patch{
		querystate.KeyMinPrice: strconv.Itoa(next.Min),
		querystate.KeyMaxPrice: strconv.Itoa(next.Max),
	})
	return true
}

func filterDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func parseDigits(raw string) (int, bool) {
	digits := filterDigits(raw)
	if digits == "" {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Max, true
		}
		return 0, false
	}
	return v, true
}
