package engine

import (
	"context"
	"sync"
)

// request is one submitted command waiting for the driver loop.
type request struct {
	ctx  context.Context
	cmd  Command
	done chan Result // buffered, size 1
}

// commandQueue is a thread-safe FIFO of requests.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type commandQueue struct {
	mu       sync.Mutex
	requests []request
	closed   bool
	signal   chan struct{} // buffered, size 1
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		requests: make([]request, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a request to the back of the queue.
// Returns false if the queue is closed.
func (q *commandQueue) Enqueue(r request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.requests = append(q.requests, r)

	// Non-blocking: the buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front request without blocking.
func (q *commandQueue) TryDequeue() (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return request{}, false
	}

	r := q.requests[0]

	// Nil out the slot so the backing array does not retain the context
	// and channel.
	q.requests[0] = request{}
	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}

	return r, true
}

// Wait returns a channel that signals when requests may be available.
func (q *commandQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Close stops accepting requests and returns the ones still queued.
// Wakes any blocked waiters by closing the signal channel.
func (q *commandQueue) Close() []request {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.signal)

	pending := q.requests
	q.requests = nil
	return pending
}
