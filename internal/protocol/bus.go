package protocol

import (
	"sync"
)

// Handler processes a Message; return error to signal failure.
type Handler func(Message) error

// Bus is a simple synchronous pub/sub message bus keyed by message
// type. Embedded presentation layers subscribe to result and progress
// messages; transports forward them over the wire.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus { return &Bus{subscribers: map[string][]Handler{}} }

// Subscribe registers a handler for a given message type.
func (b *Bus) Subscribe(msgType string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[msgType] = append(b.subscribers[msgType], h)
	b.mu.Unlock()
}

// Publish delivers a message to all handlers synchronously.
func (b *Bus) Publish(m Message) error {
	b.mu.RLock()
	hs := append([]Handler(nil), b.subscribers[m.Type()]...)
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(m); err != nil {
			return err
		}
	}
	return nil
}
