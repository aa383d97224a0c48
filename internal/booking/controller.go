package booking

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"hotelsearch/internal/datetime"
	"hotelsearch/internal/metrics"
	"hotelsearch/internal/models"
	"hotelsearch/internal/querystate"
)

var modes = map[models.BookingType]mode{
	models.BookingHour:  hourMode{},
	models.BookingNight: nightMode{},
	models.BookingDay:   dayMode{},
}

// Controller applies booking-mode transitions to the address state.
type Controller struct {
	store  *querystate.Store
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the source of "now" used when no check-in date is set.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the controller logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger.With().Str("component", "booking").Logger()
		}
	}
}

// NewController creates a controller over store.
func NewController(store *querystate.Store, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the active booking mode; absent or unknown codes mean HOUR.
func (c *Controller) Mode() models.BookingType {
	raw, _ := c.store.Get(querystate.KeyBookingTypeCode)
	if bt, ok := models.ParseBookingType(raw); ok {
		return bt
	}
	return models.BookingHour
}

// SwitchMode moves to mode to and rewrites the dates with that mode's
// time-of-day policy. The base date is the current check-in date, or today.
func (c *Controller) SwitchMode(to models.BookingType) error {
	m, ok := modes[to]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMode, to)
	}

	cur := c.snapshot()
	base, ok := datetime.ParseCanonicalDate(cur.checkInDate)
	if !ok {
		base = c.now()
	}

	patch := m.enter(base, cur)
	patch[querystate.KeyBookingTypeCode] = string(to)
	c.store.Set(patch)

	metrics.IncModeSwitch(string(to))
	c.logger.Debug().
		Str("mode", string(to)).
		Strs("keys", patch.Keys()).
		Msg("booking mode switched")
	return nil
}

// PickDate handles a date selection for field in the active mode. A nil date
// clears only that field.
func (c *Controller) PickDate(field Field, d *time.Time) error {
	key, err := fieldKey(field)
	if err != nil {
		return err
	}
	if d == nil {
		c.store.Set(querystate.Patch{key: ""})
		return nil
	}

	active := c.Mode()
	m := modes[active]
	cur := c.snapshot()

	var patch querystate.Patch
	if field == FieldCheckIn {
		patch, err = m.pickCheckIn(*d, cur)
	} else {
		patch, err = m.pickCheckOut(*d, cur)
	}
	if err != nil {
		return err
	}
	c.store.Set(patch)

	c.logger.Debug().
		Str("mode", string(active)).
		Str("field", string(field)).
		Str("date", datetime.ToCanonicalDate(*d)).
		Strs("keys", patch.Keys()).
		Msg("date picked")
	return nil
}

// SetCheckInTime stores the hourly check-in clock; an empty string clears it.
// The check-in date keeps its clock until the next pick or submit.
func (c *Controller) SetCheckInTime(clock string) error {
	if c.Mode() != models.BookingHour {
		return ErrHourlyOnly
	}
	if clock == "" {
		c.store.Set(querystate.Patch{querystate.KeyCheckInTime: ""})
		return nil
	}
	h, m, ok := datetime.ParseClock(clock)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	c.store.Set(querystate.Patch{querystate.KeyCheckInTime: fmt.Sprintf("%02d:%02d", h, m)})
	return nil
}

// SetHours stores the hourly stay length; nil clears it.
func (c *Controller) SetHours(hours *int) error {
	if c.Mode() != models.BookingHour {
		return ErrHourlyOnly
	}
	if hours == nil {
		c.store.Set(querystate.Patch{querystate.KeyHours: ""})
		return nil
	}
	if *hours < models.MinHours || *hours > models.MaxHours {
		return fmt.Errorf("%w: %d", ErrInvalidHours, *hours)
	}
	c.store.Set(querystate.Patch{querystate.KeyHours: strconv.Itoa(*hours)})
	return nil
}

// SetLocation stores the free-text location.
func (c *Controller) SetLocation(location string) {
	c.store.Set(querystate.Patch{querystate.KeyLocation: location})
}

func (c *Controller) snapshot() snapshot {
	in, _ := c.store.Get(querystate.KeyCheckInDate)
	out, _ := c.store.Get(querystate.KeyCheckOutDate)
	clock, _ := c.store.Get(querystate.KeyCheckInTime)
	return snapshot{checkInDate: in, checkOutDate: out, checkInTime: clock}
}

func fieldKey(field Field) (string, error) {
	switch field {
	case FieldCheckIn:
		return querystate.KeyCheckInDate, nil
	case FieldCheckOut:
		return querystate.KeyCheckOutDate, nil
	}
	return "", fmt.Errorf("unknown date field %q", field)
}
