package eventbus_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standin-hq/standin/pkg/eventbus"
)

type availabilityEvent struct {
	UserID    string
	Available bool
}

func TestPublish_DispatchesToMatchingHandler(t *testing.T) {
	bus := eventbus.NewEventPublisher(logrus.New())

	var got []availabilityEvent
	bus.Subscribe(func(e availabilityEvent) {
		got = append(got, e)
	})

	bus.Publish(availabilityEvent{UserID: "u1", Available: false})
	bus.Publish(availabilityEvent{UserID: "u2", Available: true})

	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].UserID)
	assert.False(t, got[0].Available)
}

func TestPublish_SkipsMismatchedSignature(t *testing.T) {
	bus := eventbus.NewEventPublisher(logrus.New())

	called := false
	bus.Subscribe(func(s string) { called = true })

	bus.Publish(availabilityEvent{UserID: "u1"})
	assert.False(t, called)
}

func TestPublish_RecoversFromHandlerPanic(t *testing.T) {
	bus := eventbus.NewEventPublisher(logrus.New())

	bus.Subscribe(func(e availabilityEvent) { panic("boom") })

	var got availabilityEvent
	bus.Subscribe(func(e availabilityEvent) { got = e })

	assert.NotPanics(t, func() {
		bus.Publish(availabilityEvent{UserID: "u3"})
	})
	assert.Equal(t, "u3", got.UserID)
}

func TestUnsubscribe(t *testing.T) {
	bus := eventbus.NewEventPublisher(logrus.New())

	calls := 0
	handler := func(e availabilityEvent) { calls++ }
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Publish(availabilityEvent{})
	bus.Unsubscribe(handler)
	bus.Publish(availabilityEvent{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.SubscribersCount())
}
