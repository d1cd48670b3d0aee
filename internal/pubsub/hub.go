package pubsub

import (
	"sync"

	"github.com/google/uuid"
)

// Token is the opaque handle a subscriber keeps to unsubscribe later.
type Token uuid.UUID

// Hub fans events out to every registered handler, synchronously,
// on the publishing goroutine.
type Hub[E any] struct {
	mu       sync.Mutex
	handlers map[Token]func(E)
}

func NewHub[E any]() *Hub[E] {
	return &Hub[E]{handlers: make(map[Token]func(E))}
}

func (h *Hub[E]) Subscribe(fn func(E)) Token {
	h.mu.Lock()
	defer h.mu.Unlock()

	token := Token(uuid.New())
	h.handlers[token] = fn
	return token
}

// Unsubscribe removes the handler. An absent token is a no-op.
func (h *Hub[E]) Unsubscribe(token Token) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.handlers, token)
}

// Publish invokes every handler registered at the moment of the call.
// It iterates over a snapshot, so handlers may subscribe or unsubscribe
// from inside the callback without corrupting the broadcast.
func (h *Hub[E]) Publish(event E) {
	h.mu.Lock()
	snapshot := make([]func(E), 0, len(h.handlers))
	for _, fn := range h.handlers {
		snapshot = append(snapshot, fn)
	}
	h.mu.Unlock()

	for _, fn := range snapshot {
		fn(event)
	}
}

func (h *Hub[E]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.handlers)
}
