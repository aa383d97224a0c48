package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_Publish(t *testing.T) {
	bus := NewEventBus()

	var got []string
	bus.Subscribe(TypeQueryChanged, func(e Event) error {
		got = append(got, "first:"+string(e.Payload))
		return errors.New("boom")
	})
	bus.Subscribe(TypeQueryChanged, func(e Event) error {
		got = append(got, "second:"+string(e.Payload))
		assert.False(t, e.CreatedAt.IsZero())
		return nil
	})
	bus.Subscribe(TypeSearchFinished, func(Event) error {
		t.Error("unrelated handler must not run")
		return nil
	})

	err := bus.Publish(Event{Type: TypeQueryChanged, Payload: []byte("location=Seoul")})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first:location=Seoul", "second:location=Seoul"}, got)
}

func TestEventBus_NoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.Publish(Event{Type: TypeSearchFinished}))
}
