package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversToSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	events, cancel := bus.Subscribe(context.Background())
	defer cancel()

	published := NewEvent(LevelSuccess, "uploaded")
	bus.Publish(context.Background(), published)

	select {
	case received := <-events:
		assert.Equal(t, published.ID, received.ID)
		assert.Equal(t, LevelSuccess, received.Level)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	events, cancel := bus.Subscribe(context.Background())
	cancel()

	// The channel is closed after cancel; publishing must not panic.
	bus.Publish(context.Background(), NewEvent(LevelInfo, "after cancel"))

	_, open := <-events
	assert.False(t, open)
}

func TestMemoryBusSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	_, cancel := bus.Subscribe(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		// More events than the subscriber buffer holds; extra ones are
		// dropped rather than blocking the publisher.
		for i := 0; i < 100; i++ {
			bus.Publish(context.Background(), NewEvent(LevelInfo, "flood"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}

func TestProgressEvent(t *testing.T) {
	event := Progress("movie.mp4", 40)

	require.Equal(t, LevelProgress, event.Level)
	assert.Equal(t, "movie.mp4", event.File)
	assert.Equal(t, 40, event.Percent)
	assert.NotEmpty(t, event.ID)
}

func TestProgressEventZeroPercentSerializes(t *testing.T) {
	// The first tick of an upload is 0%; it must still carry the field.
	data, err := json.Marshal(Progress("movie.mp4", 0))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"percent":0`)
}
