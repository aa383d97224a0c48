package models

import "strings"

// BookingType is the booking mode governing how check-in/check-out are derived.
type BookingType string

const (
	BookingHour  BookingType = "HOUR"
	BookingNight BookingType = "NIGHT"
	BookingDay   BookingType = "DAY"
)

// BookingTypes lists every booking mode.
var BookingTypes = []BookingType{BookingHour, BookingNight, BookingDay}

// ParseBookingType accepts a mode code case-insensitively.
func ParseBookingType(s string) (BookingType, bool) {
	bt := BookingType(strings.ToUpper(strings.TrimSpace(s)))
	return bt, bt.Valid()
}

// Valid reports whether b is one of the known modes.
func (b BookingType) Valid() bool {
	switch b {
	case BookingHour, BookingNight, BookingDay:
		return true
	}
	return false
}

// Hourly booking duration bounds.
const (
	MinHours = 1
	MaxHours = 6
)

// SearchQueryState is the typed view of the address query string.
type SearchQueryState struct {
	BookingTypeCode BookingType `json:"bookingTypeCode"`
	Location        string      `json:"location"`
	CheckInDate     *string     `json:"checkInDate"`
	CheckOutDate    *string     `json:"checkOutDate"`
	CheckInTime     *string     `json:"checkInTime"`
	Hours           *int        `json:"hours"`
	MinPrice        int         `json:"minPrice"`
	MaxPrice        int         `json:"maxPrice"`
}

// SearchPayload is the normalized request sent to the search endpoint.
// Unset members are encoded as null.
type SearchPayload struct {
	BookingTypeCode BookingType `json:"bookingTypeCode" url:"bookingTypeCode"`
	Location        string      `json:"location" url:"location"`
	CheckIn         *string     `json:"checkIn" url:"checkIn,omitempty"`
	CheckOut        *string     `json:"checkOut" url:"checkOut,omitempty"`
	CheckInTime     *string     `json:"checkInTime" url:"checkInTime,omitempty"`
	Hours           *int        `json:"hours" url:"hours,omitempty"`
	MinPrice        *int        `json:"minPrice" url:"minPrice,omitempty"`
	MaxPrice        *int        `json:"maxPrice" url:"maxPrice,omitempty"`
}

// HotelRecord is a single search hit.
type HotelRecord struct {
	ID           int64  `json:"id"`
	PhotoPath    string `json:"photoPath"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	RoomTypeName string `json:"roomTypeName"`
	MinPrice     int64  `json:"minPrice"`
	CurrencyCode string `json:"currencyCode"`
}

// StringPtr returns a pointer to s, or nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
