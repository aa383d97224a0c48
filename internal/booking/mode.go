// Package booking implements the booking-mode state machine that derives the
// check-in/check-out address parameters for hourly, overnight and full-day stays.
package booking

import (
	"errors"
	"fmt"
	"time"

	"hotelsearch/internal/datetime"
	"hotelsearch/internal/querystate"
)

var (
	ErrUnknownMode     = errors.New("unknown booking mode")
	ErrCheckOutDerived = errors.New("check-out is derived from hours in hourly mode")
	ErrHourlyOnly      = errors.New("check-in time and hours apply to hourly mode only")
	ErrInvalidHours    = errors.New("hours must be between 1 and 6")
	ErrInvalidClock    = errors.New("check-in time must be HH:MM")
)

// Field identifies one of the two date inputs.
type Field string

const (
	FieldCheckIn  Field = "checkIn"
	FieldCheckOut Field = "checkOut"
)

// Fixed time-of-day policy per mode.
const (
	DefaultHourlyCheckIn = "14:00"
	NightCheckIn         = "21:00"
	DayCheckIn           = "14:00"
	StayCheckOut         = "12:00"
)

// snapshot holds the raw address values a transition may depend on.
type snapshot struct {
	checkInDate  string
	checkOutDate string
	checkInTime  string
}

// mode has exactly one handler per event. Handlers are pure: they return the
// patch to apply and never touch the store themselves.
type mode interface {
	enter(base time.Time, cur snapshot) querystate.Patch
	pickCheckIn(d time.Time, cur snapshot) (querystate.Patch, error)
	pickCheckOut(d time.Time, cur snapshot) (querystate.Patch, error)
}

type hourMode struct{}

func (hourMode) enter(base time.Time, cur snapshot) querystate.Patch {
	return querystate.Patch{
		querystate.KeyCheckInDate:  datetime.At(datetime.ToCanonicalDate(base), hourlyClock(cur.checkInTime)),
		querystate.KeyCheckOutDate: "",
	}
}

func (hourMode) pickCheckIn(d time.Time, cur snapshot) (querystate.Patch, error) {
	return querystate.Patch{
		querystate.KeyCheckInDate: datetime.At(datetime.ToCanonicalDate(d), hourlyClock(cur.checkInTime)),
	}, nil
}

func (hourMode) pickCheckOut(time.Time, snapshot) (querystate.Patch, error) {
	return nil, ErrCheckOutDerived
}

type nightMode struct{}

func (nightMode) enter(base time.Time, _ snapshot) querystate.Patch {
	p := overnight(base, NightCheckIn)
	p[querystate.KeyCheckInTime] = ""
	p[querystate.KeyHours] = ""
	return p
}

// A night stay is picked as a single date; both ends follow it.
func (nightMode) pickCheckIn(d time.Time, _ snapshot) (querystate.Patch, error) {
	return overnight(d, NightCheckIn), nil
}

func (nightMode) pickCheckOut(d time.Time, _ snapshot) (querystate.Patch, error) {
	return overnight(d, NightCheckIn), nil
}

type dayMode struct{}

func (dayMode) enter(base time.Time, _ snapshot) querystate.Patch {
	p := overnight(base, DayCheckIn)
	p[querystate.KeyCheckInTime] = ""
	p[querystate.KeyHours] = ""
	return p
}

func (dayMode) pickCheckIn(d time.Time, cur snapshot) (querystate.Patch, error) {
	p := querystate.Patch{
		querystate.KeyCheckInDate: datetime.At(datetime.ToCanonicalDate(d), DayCheckIn),
	}
	// A check-out on or before the new check-in day would leave an empty or
	// inverted stay.
	if out, ok := datetime.ParseCanonicalDate(cur.checkOutDate); ok {
		if !out.After(midnight(d)) {
			p[querystate.KeyCheckOutDate] = ""
		}
	}
	return p, nil
}

// Ordering against check-in is enforced by the date picker upstream.
func (dayMode) pickCheckOut(d time.Time, _ snapshot) (querystate.Patch, error) {
	return querystate.Patch{
		querystate.KeyCheckOutDate: datetime.At(datetime.ToCanonicalDate(d), StayCheckOut),
	}, nil
}

func overnight(d time.Time, checkIn string) querystate.Patch {
	return querystate.Patch{
		querystate.KeyCheckInDate:  datetime.At(datetime.ToCanonicalDate(d), checkIn),
		querystate.KeyCheckOutDate: datetime.At(datetime.NextDay(d), StayCheckOut),
	}
}

// hourlyClock returns raw as a zero-padded HH:MM, or the hourly default.
func hourlyClock(raw string) string {
	h, m, ok := datetime.ParseClock(raw)
	if !ok {
		return DefaultHourlyCheckIn
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
