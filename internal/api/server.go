// Package api exposes the search filter controller over HTTP. Every request
// carries the page address state in its query string and receives the
// updated address back.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"hotelsearch/internal/models"
	"hotelsearch/internal/price"
	"hotelsearch/internal/querystate"
	"hotelsearch/internal/search"
)

// Action parameters that are not part of the address state.
const (
	paramTo    = "to"
	paramField = "field"
	paramDate  = "date"
	paramIndex = "index"
	paramValue = "value"
	paramPage  = "page"
)

var actionParams = []string{paramTo, paramField, paramDate, paramIndex, paramValue, paramPage}

// HTTPServer serves the filter and search endpoints.
type HTTPServer struct {
	exec   search.Executor
	now    func() time.Time
	logger zerolog.Logger
	server *http.Server
}

// StateResponse is returned by every filter endpoint.
type StateResponse struct {
	Query     string                  `json:"query"`
	State     models.SearchQueryState `json:"state"`
	Applied   bool                    `json:"applied"`
	PriceStep int                     `json:"priceStep"`
}

// SearchResponse is returned by the search endpoints.
type SearchResponse struct {
	Query   string                  `json:"query"`
	State   models.SearchQueryState `json:"state"`
	Payload *models.SearchPayload   `json:"payload,omitempty"`
	View    search.View             `json:"view"`
	Page    ResultPage              `json:"page"`
}

// ValidationResponse is returned with 422 when a submit is blocked.
type ValidationResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
	Query  string   `json:"query"`
}

// NewHTTPServer builds a server listening on addr that searches through exec.
func NewHTTPServer(addr string, exec search.Executor, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		exec:   exec,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	if logger != nil {
		s.logger = logger.With().Str("component", "api").Logger()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/search", s.handleSearch)
	mux.HandleFunc("/api/v1/filters", s.handleFilters)
	mux.HandleFunc("/api/v1/filters/mode", s.handleMode)
	mux.HandleFunc("/api/v1/filters/dates", s.handleDates)
	mux.HandleFunc("/api/v1/filters/price", s.handlePrice)
	mux.HandleFunc("/api/v1/filters/hourly", s.handleHourly)
	mux.HandleFunc("/api/v1/filters/location", s.handleLocation)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// storeFromRequest builds the address state from r, leaving out action
// parameters. Every later change is logged with the route that made it.
func (s *HTTPServer) storeFromRequest(r *http.Request) *querystate.Store {
	values := r.URL.Query()
	for _, p := range actionParams {
		values.Del(p)
	}
	store := querystate.FromValues(values)
	store.Subscribe(func(encoded string) {
		s.logger.Debug().
			Str("path", r.URL.Path).
			Str("query", encoded).
			Msg("address changed")
	})
	return store
}

func stateResponse(store *querystate.Store, applied bool) StateResponse {
	return StateResponse{
		Query:     store.Encode(),
		State:     search.ReadState(store),
		Applied:   applied,
		PriceStep: price.Step,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
