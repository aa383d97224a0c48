package search

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelsearch/internal/models"
	"hotelsearch/internal/querystate"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Search(ctx context.Context, payload models.SearchPayload) ([]models.HotelRecord, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HotelRecord), args.Error(1)
}

func newSession(query string, exec Executor) (*Session, *querystate.Store) {
	store := querystate.New(query)
	logger := zerolog.New(io.Discard)
	return NewSession(store, exec,
		WithSessionClock(func() time.Time { return testNow }),
		WithSessionLogger(&logger),
	), store
}

var hotels = []models.HotelRecord{
	{ID: 1, Name: "Hotel Lotte", Address: "Seoul", RoomTypeName: "Deluxe", MinPrice: 120000, CurrencyCode: "KRW"},
	{ID: 2, Name: "Paradise", Address: "Busan", RoomTypeName: "Standard", MinPrice: 80000, CurrencyCode: "KRW"},
}

func TestSession_InitialLoadOnce(t *testing.T) {
	exec := new(mockExecutor)
	s, _ := newSession("bookingTypeCode=NIGHT&location=Seoul", exec)
	ctx := context.Background()

	want := BuildInitialPayload(querystate.New("bookingTypeCode=NIGHT&location=Seoul").Values())
	exec.On("Search", ctx, want).Return(hotels, nil).Once()

	require.NoError(t, s.InitialLoad(ctx))
	require.NoError(t, s.InitialLoad(ctx))

	exec.AssertNumberOfCalls(t, "Search", 1)
	v := s.View()
	assert.Equal(t, hotels, v.Results)
	require.NotNil(t, v.LastPayload)
	assert.Equal(t, want, *v.LastPayload)
	assert.NotEmpty(t, v.LastSearchID)
	assert.Empty(t, v.Error)
	assert.Equal(t, 0, v.InFlight)
}

func TestSession_SubmitHourly(t *testing.T) {
	exec := new(mockExecutor)
	s, store := newSession("checkInDate=2024-05-01T14:00:00&checkInTime=14:00&hours=3", exec)
	ctx := context.Background()

	exec.On("Search", ctx, mock.MatchedBy(func(p models.SearchPayload) bool {
		return p.CheckIn != nil && *p.CheckIn == "2024-05-01T14:00:00" &&
			p.CheckOut != nil && *p.CheckOut == "2024-05-01T17:00:00"
	})).Return(hotels[:1], nil).Once()

	p, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T17:00:00", *p.CheckOut)
	exec.AssertExpectations(t)

	out, _ := store.Get(querystate.KeyCheckOutDate)
	assert.Equal(t, "2024-05-01T17:00:00", out)

	v := s.View()
	assert.Equal(t, hotels[:1], v.Results)
	assert.Equal(t, p, *v.LastPayload)
}

func TestSession_SubmitValidationKeepsResults(t *testing.T) {
	exec := new(mockExecutor)
	s, store := newSession("checkInDate=2024-05-01&checkInTime=14:00&hours=2", exec)
	ctx := context.Background()

	exec.On("Search", ctx, mock.Anything).Return(hotels, nil).Once()
	_, err := s.Submit(ctx)
	require.NoError(t, err)
	shown := s.View()

	store.Set(querystate.Patch{querystate.KeyHours: ""})
	before := store.Encode()

	_, err = s.Submit(ctx)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	exec.AssertNumberOfCalls(t, "Search", 1)
	v := s.View()
	assert.Equal(t, shown.Results, v.Results)
	assert.Equal(t, shown.LastPayload, v.LastPayload)
	assert.Equal(t, verr.Error(), v.Error)
	assert.Equal(t, before, store.Encode())
}

func TestSession_FetchErrorClearsResults(t *testing.T) {
	exec := new(mockExecutor)
	s, _ := newSession("bookingTypeCode=DAY&checkInDate=2024-05-01T14:00:00&checkOutDate=2024-05-02T12:00:00", exec)
	ctx := context.Background()

	exec.On("Search", ctx, mock.Anything).Return(hotels, nil).Once()
	require.NoError(t, s.InitialLoad(ctx))
	first := s.View()

	exec.On("Search", ctx, mock.Anything).Return(nil, errors.New("search service unavailable")).Once()
	_, err := s.Submit(ctx)
	assert.EqualError(t, err, "search service unavailable")

	v := s.View()
	assert.Nil(t, v.Results)
	assert.Equal(t, "search service unavailable", v.Error)
	assert.Equal(t, first.LastPayload, v.LastPayload, "last payload tracks successful searches only")
}

func TestSession_OnFinished(t *testing.T) {
	exec := new(mockExecutor)
	s, _ := newSession("bookingTypeCode=NIGHT", exec)
	ctx := context.Background()

	var got []View
	s.OnFinished(func(v View) { got = append(got, v) })

	exec.On("Search", ctx, mock.Anything).Return(hotels, nil).Once()
	require.NoError(t, s.InitialLoad(ctx))

	require.Len(t, got, 1)
	assert.Equal(t, hotels, got[0].Results)
}

// blockingExecutor releases each call when its channel is closed.
type blockingExecutor struct {
	mu      sync.Mutex
	release map[string]chan struct{}
	results map[string][]models.HotelRecord
}

func (b *blockingExecutor) Search(ctx context.Context, p models.SearchPayload) ([]models.HotelRecord, error) {
	b.mu.Lock()
	ch := b.release[p.Location]
	res := b.results[p.Location]
	b.mu.Unlock()
	<-ch
	return res, nil
}

func TestSession_LastResolvedWins(t *testing.T) {
	exec := &blockingExecutor{
		release: map[string]chan struct{}{"old": make(chan struct{}), "new": make(chan struct{})},
		results: map[string][]models.HotelRecord{"old": hotels[:1], "new": hotels[1:]},
	}
	s, store := newSession("bookingTypeCode=NIGHT&location=old&checkInDate=2024-05-01T21:00:00&checkOutDate=2024-05-02T12:00:00", exec)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.InitialLoad(ctx)
	}()

	require.Eventually(t, func() bool { return s.View().InFlight == 1 }, time.Second, time.Millisecond)

	store.Set(querystate.Patch{querystate.KeyLocation: "new"})
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Submit(ctx)
	}()
	require.Eventually(t, func() bool { return s.View().InFlight == 2 }, time.Second, time.Millisecond)

	close(exec.release["new"])
	require.Eventually(t, func() bool { return s.View().InFlight == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, hotels[1:], s.View().Results)

	// The older request resolves last and overwrites the newer result.
	close(exec.release["old"])
	wg.Wait()
	v := s.View()
	assert.Equal(t, hotels[:1], v.Results)
	assert.Equal(t, "old", v.LastPayload.Location)
}
