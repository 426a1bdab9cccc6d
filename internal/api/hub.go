package api

import (
	"sync"

	"github.com/roach88/reelsync/internal/engine"
)

// subscriberBuffer bounds the states queued for one slow connection.
const subscriberBuffer = 64

// Subscriber receives engine views.
type Subscriber chan engine.View

// Hub broadcasts engine views to subscribed connections.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[Subscriber]struct{})}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() Subscriber {
	ch := make(Subscriber, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub)
}

// Broadcast sends v to every subscriber. It never blocks: a subscriber
// whose buffer is full misses v. Broadcast has the engine.Observer
// signature so it can be registered with engine.WithObserver.
func (h *Hub) Broadcast(v engine.View) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		select {
		case sub <- v:
		default:
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
