package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/stategraph/internal/app/dto"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestStreamDeliversToAllHandlers(t *testing.T) {
	stream := NewStream(16)
	defer stream.Stop()

	var mu sync.Mutex
	var first, second []dto.Event
	stream.AddHandler(HandlerFunc(func(ev dto.Event) error {
		mu.Lock()
		defer mu.Unlock()
		first = append(first, ev)
		return nil
	}))
	stream.AddHandler(HandlerFunc(func(ev dto.Event) error {
		mu.Lock()
		defer mu.Unlock()
		second = append(second, ev)
		return nil
	}))
	stream.Start()

	stream.Publish(dto.Event{ID: "1", Type: dto.EventRunStart})
	stream.Publish(dto.Event{ID: "2", Type: dto.EventRunEnd})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(first) == 2 && len(second) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "1", first[0].ID)
	assert.Equal(t, "2", first[1].ID)
	assert.Equal(t, first, second)
}

func TestStreamHandlerErrorDoesNotStopDelivery(t *testing.T) {
	stream := NewStream(16)
	defer stream.Stop()

	var mu sync.Mutex
	var delivered int
	stream.AddHandler(HandlerFunc(func(dto.Event) error {
		return errors.New("handler broke")
	}))
	stream.AddHandler(HandlerFunc(func(dto.Event) error {
		mu.Lock()
		defer mu.Unlock()
		delivered++
		return nil
	}))
	stream.Start()

	stream.Publish(dto.Event{ID: "1"})
	stream.Publish(dto.Event{ID: "2"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == 2
	})
}

func TestStreamPublishNeverBlocksWhenFull(t *testing.T) {
	// Not started: nothing drains the buffer.
	stream := NewStream(1)
	defer stream.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			stream.Publish(dto.Event{ID: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
}

func TestStreamStartIsIdempotent(t *testing.T) {
	stream := NewStream(4)
	defer stream.Stop()

	var mu sync.Mutex
	var delivered int
	stream.AddHandler(HandlerFunc(func(dto.Event) error {
		mu.Lock()
		defer mu.Unlock()
		delivered++
		return nil
	}))

	stream.Start()
	stream.Start()
	stream.Publish(dto.Event{ID: "1"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered >= 1
	})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, delivered, "double Start must not double delivery")
}
