// Package notify is the fire-and-forget notification channel the UI renders
// as toasts. Components publish events; subscribers (the SSE handler) fan
// them out to connected browsers. The bus is injected via constructors, never
// reached through ambient globals.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies an event for rendering.
type Level string

const (
	LevelSuccess  Level = "success"
	LevelError    Level = "error"
	LevelInfo     Level = "info"
	LevelProgress Level = "progress"
)

// Event is one gallery notification.
type Event struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	File    string    `json:"file,omitempty"`
	Percent int       `json:"percent"`
	Time    time.Time `json:"time"`
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(level Level, message string) Event {
	return Event{
		ID:      uuid.New().String(),
		Level:   level,
		Message: message,
		Time:    time.Now(),
	}
}

// Progress builds an upload-progress event.
func Progress(file string, percent int) Event {
	e := NewEvent(LevelProgress, "")
	e.File = file
	e.Percent = percent
	return e
}

// Bus is a publish/subscribe channel for events. Publish never blocks on
// slow subscribers.
type Bus interface {
	Publish(ctx context.Context, event Event)
	Subscribe(ctx context.Context) (<-chan Event, func())
	Close() error
}

// MemoryBus is an in-process Bus, used when Redis is not configured and in
// tests.
type MemoryBus struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	closed      bool
}

// NewMemoryBus creates an in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subscribers: make(map[chan Event]struct{})}
}

// Publish delivers the event to every subscriber. Subscribers with full
// buffers miss the event rather than block the publisher.
func (b *MemoryBus) Publish(_ context.Context, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a subscriber. The returned cancel function must be
// called when done.
func (b *MemoryBus) Subscribe(_ context.Context) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	if !b.closed {
		b.subscribers[ch] = struct{}{}
	} else {
		close(ch)
	}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subscribers[ch]; ok {
				delete(b.subscribers, ch)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close shuts the bus down and closes all subscriber channels.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
	return nil
}
