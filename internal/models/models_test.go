package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingType(t *testing.T) {
	tests := []struct {
		input string
		want  BookingType
		ok    bool
	}{
		{"HOUR", BookingHour, true},
		{"night", BookingNight, true},
		{" Day ", BookingDay, true},
		{"WEEK", BookingType("WEEK"), false},
		{"", BookingType(""), false},
	}

	for _, tt := range tests {
		got, ok := ParseBookingType(tt.input)
		assert.Equal(t, tt.ok, ok, "input: %q", tt.input)
		assert.Equal(t, tt.want, got, "input: %q", tt.input)
	}
}

func TestSearchPayload_NullMembers(t *testing.T) {
	p := SearchPayload{BookingTypeCode: BookingHour, Location: "Seoul", Hours: IntPtr(3)}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"bookingTypeCode": "HOUR",
		"location": "Seoul",
		"checkIn": null,
		"checkOut": null,
		"checkInTime": null,
		"hours": 3,
		"minPrice": null,
		"maxPrice": null
	}`, string(data))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	if p := StringPtr("14:00"); assert.NotNil(t, p) {
		assert.Equal(t, "14:00", *p)
	}
}
