package search

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotelsearch/internal/events"
	"hotelsearch/internal/metrics"
	"hotelsearch/internal/models"
	"hotelsearch/internal/querystate"
)

// Executor performs the remote search.
type Executor interface {
	Search(ctx context.Context, payload models.SearchPayload) ([]models.HotelRecord, error)
}

// Trigger tells what started a search.
type Trigger string

const (
	TriggerInitial Trigger = "initial"
	TriggerSubmit  Trigger = "submit"
)

// View is what the page renders: the result list, the payload that produced
// it and the last error message.
type View struct {
	Results      []models.HotelRecord  `json:"results"`
	LastPayload  *models.SearchPayload `json:"lastSearchPayload"`
	LastSearchID string                `json:"lastSearchId,omitempty"`
	Error        string                `json:"error,omitempty"`
	InFlight     int                   `json:"inFlight"`
}

// Session ties one page's address state to its search results.
//
// Fetches are not cancelled or sequenced: when two overlap, whichever resolves
// last determines the view.
type Session struct {
	store  *querystate.Store
	exec   Executor
	now    func() time.Time
	logger zerolog.Logger
	bus    *events.EventBus

	initOnce sync.Once
	mu       sync.Mutex
	view     View
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionClock overrides the clock used for an absent hourly check-in date.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *zerolog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger.With().Str("component", "search").Logger()
		}
	}
}

// NewSession creates a session over store that searches through exec.
func NewSession(store *querystate.Store, exec Executor, opts ...SessionOption) *Session {
	s := &Session{
		store:  store,
		exec:   exec,
		now:    time.Now,
		logger: zerolog.Nop(),
		bus:    events.NewEventBus(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitialLoad runs the automatic first search from the raw address. Only the
// first call fetches; later calls return nil without doing anything.
func (s *Session) InitialLoad(ctx context.Context) error {
	var err error
	s.initOnce.Do(func() {
		payload := BuildInitialPayload(s.store.Values())
		err = s.fetch(ctx, TriggerInitial, payload)
	})
	return err
}

// Submit validates the current state and searches with it. A
// *ValidationError leaves the results untouched and issues no fetch.
func (s *Session) Submit(ctx context.Context) (models.SearchPayload, error) {
	payload, err := BuildSubmitPayload(s.store, s.now())
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.IncSearch(string(TriggerSubmit), "validation_error")
		}
		s.mu.Lock()
		s.view.Error = err.Error()
		s.mu.Unlock()
		s.logger.Info().Err(err).Msg("search submit rejected")
		return models.SearchPayload{}, err
	}
	return payload, s.fetch(ctx, TriggerSubmit, payload)
}

// View returns a copy of the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyViewLocked()
}

// OnFinished registers fn to receive the view after every completed fetch.
func (s *Session) OnFinished(fn func(View)) {
	s.bus.Subscribe(events.TypeSearchFinished, func(e events.Event) error {
		var v View
		if err := json.Unmarshal(e.Payload, &v); err != nil {
			return err
		}
		fn(v)
		return nil
	})
}

func (s *Session) fetch(ctx context.Context, trigger Trigger, payload models.SearchPayload) error {
	searchID := uuid.NewString()
	s.mu.Lock()
	s.view.InFlight++
	s.mu.Unlock()

	start := time.Now()
	results, err := s.exec.Search(ctx, payload)
	elapsed := time.Since(start).Seconds()

	s.mu.Lock()
	s.view.InFlight--
	if err != nil {
		s.view.Results = nil
		s.view.Error = err.Error()
	} else {
		p := payload
		s.view.Results = results
		s.view.LastPayload = &p
		s.view.LastSearchID = searchID
		s.view.Error = ""
	}
	view := s.copyViewLocked()
	s.mu.Unlock()

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.IncSearch(string(trigger), outcome)
	metrics.ObserveSearchDuration(outcome, elapsed)

	logEvent := s.logger.Info()
	if err != nil {
		logEvent = s.logger.Warn().Err(err)
	}
	logEvent.
		Str("search_id", searchID).
		Str("trigger", string(trigger)).
		Str("mode", string(payload.BookingTypeCode)).
		Int("results", len(results)).
		Float64("elapsed_s", elapsed).
		Msg("search finished")

	if data, mErr := json.Marshal(view); mErr == nil {
		_ = s.bus.Publish(events.Event{Type: events.TypeSearchFinished, Payload: data})
	}
	return err
}

func (s *Session) copyViewLocked() View {
	v := s.view
	if s.view.Results != nil {
		v.Results = append([]models.HotelRecord(nil), s.view.Results...)
	}
	if s.view.LastPayload != nil {
		p := *s.view.LastPayload
		v.LastPayload = &p
	}
	return v
}
