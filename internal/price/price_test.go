package price

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"hotelsearch/internal/querystate"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, Min, Clamp(0))
	assert.Equal(t, Min, Clamp(-5))
	assert.Equal(t, 150000, Clamp(150000))
	assert.Equal(t, Max, Clamp(Max+1))
}

func TestRead_Defaults(t *testing.T) {
	assert.Equal(t, Range{Min: Min, Max: Max}, Read(querystate.New("")))
	assert.Equal(t, Range{Min: 50000, Max: Max}, Read(querystate.New("minPrice=50000&maxPrice=abc")))
	assert.Equal(t, Range{Min: Min, Max: Max}, Read(querystate.New("minPrice=1&maxPrice=999999999")))
}

func TestSetEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		index     int
		raw       string
		committed bool
		want      Range
	}{
		{"formatted input", "", IndexMin, "₩ 50,000", true, Range{Min: 50000, Max: Max}},
		{"clamped low", "", IndexMin, "5", true, Range{Min: Min, Max: Max}},
		{"clamped high", "", IndexMax, "99999999999", true, Range{Min: Min, Max: Max}},
		{"overflow clamps", "", IndexMax, "999999999999999999999999", true, Range{Min: Min, Max: Max}},
		{"no digits ignored", "minPrice=30000", IndexMin, "abc", false, Range{Min: 30000, Max: Max}},
		{"empty ignored", "", IndexMax, "", false, Range{Min: Min, Max: Max}},
		{"min above max rejected", "minPrice=30000&maxPrice=40000", IndexMin, "50000", false, Range{Min: 30000, Max: 40000}},
		{"max below min rejected", "minPrice=30000&maxPrice=40000", IndexMax, "25000", false, Range{Min: 30000, Max: 40000}},
		{"equal allowed", "minPrice=30000&maxPrice=40000", IndexMax, "30000", true, Range{Min: 30000, Max: 30000}},
		{"unknown index", "", 2, "30000", false, Range{Min: Min, Max: Max}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := querystate.New(tt.query)
			s := NewState(store)

			assert.Equal(t, tt.committed, s.SetEndpoint(tt.index, tt.raw))
			assert.Equal(t, tt.want, s.Range())
		})
	}
}

func TestSetEndpoint_WritesBothKeys(t *testing.T) {
	store := querystate.New("location=Seoul")
	s := NewState(store)

	notified := 0
	store.Subscribe(func(string) { notified++ })

	assert.True(t, s.SetEndpoint(IndexMax, "200000"))
	assert.Equal(t, 1, notified)

	minRaw, _ := store.Get(querystate.KeyMinPrice)
	maxRaw, _ := store.Get(querystate.KeyMaxPrice)
	assert.Equal(t, "20000", minRaw)
	assert.Equal(t, "200000", maxRaw)
}

func TestSetEndpoint_InvariantHolds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	store := querystate.New("")
	s := NewState(store)

	for i := 0; i < 2000; i++ {
		raw := strconv.Itoa(rng.Intn(12000000))
		if i%7 == 0 {
			raw = "x" + raw + "원"
		}
		if i%11 == 0 {
			raw = "n/a"
		}
		s.SetEndpoint(rng.Intn(2), raw)

		r := s.Range()
		assert.LessOrEqual(t, r.Min, r.Max)
		assert.GreaterOrEqual(t, r.Min, Min)
		assert.LessOrEqual(t, r.Max, Max)
	}
}
