// Package querystate keeps the search filters in a URL query string, which is
// the single source of truth for the page's filter state.
package querystate

import (
	"net/url"
	"sort"
	"sync"

	"hotelsearch/internal/events"
)

// URL parameter keys.
const (
	KeyBookingTypeCode = "bookingTypeCode"
	KeyLocation        = "location"
	KeyCheckInDate     = "checkInDate"
	KeyCheckOutDate    = "checkOutDate"
	KeyCheckInTime     = "checkInTime"
	KeyHours           = "hours"
	KeyMinPrice        = "minPrice"
	KeyMaxPrice        = "maxPrice"
)

// Patch is a set of key updates applied together. An empty value removes the key.
type Patch map[string]string

// Keys returns the patch keys in a stable order.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store wraps the address query string. Every Set replaces the current
// address in place; there is no history of previous states.
type Store struct {
	mu     sync.RWMutex
	values url.Values
	bus    *events.EventBus
}

// New parses rawQuery (with or without a leading '?'). Pairs that fail to
// decode are dropped; the rest are kept.
func New(rawQuery string) *Store {
	if len(rawQuery) > 0 && rawQuery[0] == '?' {
		rawQuery = rawQuery[1:]
	}
	values, _ := url.ParseQuery(rawQuery)
	return FromValues(values)
}

// FromValues copies values into a new store.
func FromValues(values url.Values) *Store {
	s := &Store{values: url.Values{}, bus: events.NewEventBus()}
	for k, v := range values {
		if len(v) > 0 && v[0] != "" {
			s.values.Set(k, v[0])
		}
	}
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.values.Get(key)
	return v, v != ""
}

// Set applies every key in patch as one update and publishes a single
// change event. Keys absent from patch are preserved.
func (s *Store) Set(patch Patch) {
	if len(patch) == 0 {
		return
	}

	s.mu.Lock()
	changed := false
	for key, value := range patch {
		current := s.values.Get(key)
		switch {
		case value == "" && current != "":
			s.values.Del(key)
			changed = true
		case value != "" && value != current:
			s.values.Set(key, value)
			changed = true
		}
	}
	encoded := s.values.Encode()
	s.mu.Unlock()

	if changed {
		_ = s.bus.Publish(events.Event{Type: events.TypeQueryChanged, Payload: []byte(encoded)})
	}
}

// Encode returns the current address query string (keys sorted).
func (s *Store) Encode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Encode()
}

// Values returns a copy of the current state.
func (s *Store) Values() url.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(url.Values, len(s.values))
	for k, v := range s.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Subscribe registers fn to receive the encoded address after every change.
func (s *Store) Subscribe(fn func(encoded string)) {
	s.bus.Subscribe(events.TypeQueryChanged, func(e events.Event) error {
		fn(string(e.Payload))
		return nil
	})
}
