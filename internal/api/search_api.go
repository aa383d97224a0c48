package api

import (
	"errors"
	"net/http"

	"hotelsearch/internal/metrics"
	"hotelsearch/internal/search"
	"hotelsearch/internal/searchapi"
)

// handleSearch runs the page-load search (GET) or an explicit submit (POST).
// GET /api/v1/search?<state>&page=N
// POST /api/v1/search?<state>&page=N
func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	store := s.storeFromRequest(r)
	session := search.NewSession(store, s.exec,
		search.WithSessionClock(s.now),
		search.WithSessionLogger(&s.logger),
	)
	var (
		finished    search.View
		hasFinished bool
	)
	session.OnFinished(func(v search.View) {
		finished, hasFinished = v, true
	})

	var err error
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("search_initial")
		err = session.InitialLoad(r.Context())
	case http.MethodPost:
		metrics.IncHTTP("search_submit")
		_, err = session.Submit(r.Context())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var verr *search.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
			Error:  verr.Error(),
			Fields: verr.Fields,
			Query:  store.Encode(),
		})
		return
	}

	view := finished
	if !hasFinished {
		view = session.View()
	}
	resp := SearchResponse{
		Query: store.Encode(),
		State: search.ReadState(store),
		View:  view,
		Page:  paginate(view.Results, pageParam(r.URL.Query().Get(paramPage))),
	}
	if err != nil {
		writeJSON(w, fetchStatus(err), resp)
		return
	}
	resp.Payload = view.LastPayload
	writeJSON(w, http.StatusOK, resp)
}

func fetchStatus(err error) int {
	var ferr *searchapi.FetchError
	if errors.As(err, &ferr) {
		switch {
		case ferr.Status == http.StatusTooManyRequests:
			return http.StatusTooManyRequests
		case ferr.Status >= 400 && ferr.Status < 500:
			return http.StatusBadRequest
		}
	}
	return http.StatusBadGateway
}
