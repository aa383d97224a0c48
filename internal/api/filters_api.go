package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotelsearch/internal/booking"
	"hotelsearch/internal/datetime"
	"hotelsearch/internal/metrics"
	"hotelsearch/internal/models"
	"hotelsearch/internal/price"
	"hotelsearch/internal/querystate"
)

// handleFilters returns the current state with display defaults.
// GET /api/v1/filters?<state>
func (s *HTTPServer) handleFilters(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("filters")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(s.storeFromRequest(r), false))
}

// handleMode switches the booking mode.
// POST /api/v1/filters/mode?to=HOUR|NIGHT|DAY&<state>
func (s *HTTPServer) handleMode(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("mode")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	to, ok := models.ParseBookingType(r.URL.Query().Get(paramTo))
	if !ok {
		writeError(w, http.StatusBadRequest, "to must be one of "+bookingTypeList())
		return
	}

	store := s.storeFromRequest(r)
	if err := s.controller(store).SwitchMode(to); err != nil {
		s.writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(store, true))
}

// handleDates picks or clears a check-in/check-out date.
// POST /api/v1/filters/dates?field=checkIn|checkOut&date=YYYY-MM-DD&<state>
func (s *HTTPServer) handleDates(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("dates")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	var picked *time.Time
	if raw := q.Get(paramDate); raw != "" {
		d, ok := datetime.ParseCanonicalDate(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		picked = &d
	}

	store := s.storeFromRequest(r)
	if err := s.controller(store).PickDate(booking.Field(q.Get(paramField)), picked); err != nil {
		s.writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(store, true))
}

// handlePrice edits one end of the price range. Ignored edits return the
// unchanged state with applied=false.
// POST /api/v1/filters/price?index=0|1&value=...&<state>
func (s *HTTPServer) handlePrice(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("price")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	index, err := strconv.Atoi(q.Get(paramIndex))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be 0 or 1")
		return
	}

	store := s.storeFromRequest(r)
	applied := price.NewState(store).SetEndpoint(index, q.Get(paramValue))
	if applied {
		metrics.IncPriceEdit("applied")
	} else {
		metrics.IncPriceEdit("ignored")
	}
	writeJSON(w, http.StatusOK, stateResponse(store, applied))
}

// handleHourly normalizes the hourly check-in time and stay length carried in
// the state. Only valid in HOUR mode.
// POST /api/v1/filters/hourly?checkInTime=HH:MM&hours=N&<state>
func (s *HTTPServer) handleHourly(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("hourly")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	var hours *int
	if raw := q.Get(querystate.KeyHours); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "hours must be a number")
			return
		}
		hours = &n
	}

	store := s.storeFromRequest(r)
	ctrl := s.controller(store)
	if err := ctrl.SetCheckInTime(q.Get(querystate.KeyCheckInTime)); err != nil {
		s.writeControllerError(w, err)
		return
	}
	if err := ctrl.SetHours(hours); err != nil {
		s.writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(store, true))
}

// handleLocation sets the free-text location.
// POST /api/v1/filters/location?location=...&<state>
func (s *HTTPServer) handleLocation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("location")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	store := s.storeFromRequest(r)
	s.controller(store).SetLocation(r.URL.Query().Get(querystate.KeyLocation))
	writeJSON(w, http.StatusOK, stateResponse(store, true))
}

func bookingTypeList() string {
	codes := make([]string, len(models.BookingTypes))
	for i, bt := range models.BookingTypes {
		codes[i] = string(bt)
	}
	return strings.Join(codes, ", ")
}

func (s *HTTPServer) controller(store *querystate.Store) *booking.Controller {
	return booking.NewController(store, booking.WithClock(s.now), booking.WithLogger(&s.logger))
}

func (s *HTTPServer) writeControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrCheckOutDerived), errors.Is(err, booking.ErrHourlyOnly):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Debug().Err(err).Msg("filter rejected")
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
