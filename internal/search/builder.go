// Package search derives search requests from the address state and runs them
// against the search endpoint.
package search

import (
	"net/url"
	"strconv"
	"time"

	"hotelsearch/internal/datetime"
	"hotelsearch/internal/models"
	"hotelsearch/internal/price"
	"hotelsearch/internal/querystate"
)

const hourlyFieldsMessage = "select a check-in time and number of hours"

// ReadState returns the typed view of store with display defaults applied.
func ReadState(store *querystate.Store) models.SearchQueryState {
	get := func(key string) string {
		v, _ := store.Get(key)
		return v
	}

	bt, ok := models.ParseBookingType(get(querystate.KeyBookingTypeCode))
	if !ok {
		bt = models.BookingHour
	}
	prices := price.Read(store)

	return models.SearchQueryState{
		BookingTypeCode: bt,
		Location:        get(querystate.KeyLocation),
		CheckInDate:     models.StringPtr(get(querystate.KeyCheckInDate)),
		CheckOutDate:    models.StringPtr(get(querystate.KeyCheckOutDate)),
		CheckInTime:     models.StringPtr(get(querystate.KeyCheckInTime)),
		Hours:           parseInt(get(querystate.KeyHours)),
		MinPrice:        prices.Min,
		MaxPrice:        prices.Max,
	}
}

// BuildInitialPayload maps the raw address parameters of a page load into a
// payload. Unlike ReadState it applies no price defaults, so the first load
// reflects exactly what the address holds.
func BuildInitialPayload(params url.Values) models.SearchPayload {
	bt, ok := models.ParseBookingType(params.Get(querystate.KeyBookingTypeCode))
	if !ok {
		bt = models.BookingHour
	}

	return models.SearchPayload{
		BookingTypeCode: bt,
		Location:        params.Get(querystate.KeyLocation),
		CheckIn:         models.StringPtr(params.Get(querystate.KeyCheckInDate)),
		CheckOut:        models.StringPtr(params.Get(querystate.KeyCheckOutDate)),
		CheckInTime:     models.StringPtr(params.Get(querystate.KeyCheckInTime)),
		Hours:           parseInt(params.Get(querystate.KeyHours)),
		MinPrice:        parseInt(params.Get(querystate.KeyMinPrice)),
		MaxPrice:        parseInt(params.Get(querystate.KeyMaxPrice)),
	}
}

// BuildSubmitPayload builds the payload for an explicit search. In HOUR mode
// it requires a check-in time and hours, recomputes both ends of the stay and
// writes them back to store. A missing check-in date means today.
func BuildSubmitPayload(store *querystate.Store, now time.Time) (models.SearchPayload, error) {
	state := ReadState(store)
	payload := models.SearchPayload{
		BookingTypeCode: state.BookingTypeCode,
		Location:        state.Location,
		CheckIn:         state.CheckInDate,
		CheckOut:        state.CheckOutDate,
		MinPrice:        models.IntPtr(state.MinPrice),
		MaxPrice:        models.IntPtr(state.MaxPrice),
	}
	if state.BookingTypeCode != models.BookingHour {
		return payload, nil
	}

	var missing []string
	hour, minute, clockOK := 0, 0, false
	if state.CheckInTime != nil {
		hour, minute, clockOK = datetime.ParseClock(*state.CheckInTime)
	}
	if !clockOK {
		missing = append(missing, querystate.KeyCheckInTime)
	}
	if state.Hours == nil || *state.Hours < models.MinHours || *state.Hours > models.MaxHours {
		missing = append(missing, querystate.KeyHours)
	}
	if len(missing) > 0 {
		return models.SearchPayload{}, &ValidationError{Fields: missing, Message: hourlyFieldsMessage}
	}

	date := now
	if state.CheckInDate != nil {
		if d, ok := datetime.ParseCanonicalDate(*state.CheckInDate); ok {
			date = d
		}
	}
	checkIn := datetime.CombineClock(date, hour, minute)
	// Wall-clock addition; time.Date rolls hour overflow into the next day.
	checkOut := datetime.CombineClock(date, hour+*state.Hours, minute)

	in := datetime.ToLocalTimestamp(checkIn)
	out := datetime.ToLocalTimestamp(checkOut)
	clock := checkIn.Format(datetime.ClockLayout)

	store.Set(querystate.Patch{
		querystate.KeyCheckInDate:  in,
		querystate.KeyCheckOutDate: out,
	})

	payload.CheckIn = &in
	payload.CheckOut = &out
	payload.CheckInTime = &clock
	payload.Hours = state.Hours
	return payload, nil
}

func parseInt(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
