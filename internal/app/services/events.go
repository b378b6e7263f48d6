// Package services provides the run-event side channel connecting the
// executor to tracing consumers.
package services

import (
	"context"
	"log"
	"sync"

	"github.com/flowgraph/stategraph/internal/app/dto"
	"github.com/flowgraph/stategraph/internal/infrastructure/metrics"
)

// Handler processes run lifecycle events. Handlers receive read-only
// snapshots and must not retain or mutate them.
type Handler interface {
	HandleEvent(ev dto.Event) error
}

// Stream fans run events out to registered handlers on a dedicated
// goroutine. Publish never blocks: when the buffer is full the event is
// dropped and counted, so a slow consumer cannot stall a run.
type Stream struct {
	handlers []Handler
	events   chan dto.Event
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
}

// NewStream creates a stopped stream with the given buffer capacity.
// Capacity <= 0 gets a default of 1024.
func NewStream(capacity int) *Stream {
	if capacity <= 0 {
		capacity = 1024
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Stream{
		events: make(chan dto.Event, capacity),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddHandler registers a consumer. Safe to call before or after Start.
func (s *Stream) AddHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// Start launches the delivery goroutine.
func (s *Stream) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	go func() {
		for {
			select {
			case ev := <-s.events:
				s.mu.RLock()
				for _, h := range s.handlers {
					if err := h.HandleEvent(ev); err != nil {
						log.Printf("event handler error: %v", err)
					}
				}
				s.mu.RUnlock()
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

// Publish enqueues an event without blocking.
func (s *Stream) Publish(ev dto.Event) {
	select {
	case s.events <- ev:
	default:
		metrics.IncEventsDropped()
	}
}

// Stop halts delivery. Events still buffered are discarded.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.cancel()
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ev dto.Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ev dto.Event) error { return f(ev) }
