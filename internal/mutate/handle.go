package mutate

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Handle tracks one dispatched mutation intent from dispatch to settlement.
// The speculative cache write has already happened by the time a Handle is
// returned; the handle only reports how the remote call ended.
type Handle[T any] struct {
	id   uuid.UUID
	done chan struct{}

	mu        sync.Mutex
	settled   bool
	result    T
	err       error
	callbacks []func(T, error)
}

func newHandle[T any](id uuid.UUID) *Handle[T] {
	return &Handle[T]{id: id, done: make(chan struct{})}
}

// ID identifies the mutation intent, mostly for logging.
func (h *Handle[T]) ID() uuid.UUID { return h.id }

// Done is closed once the intent has settled, success or failure.
func (h *Handle[T]) Done() <-chan struct{} { return h.done }

// Wait blocks until settlement or ctx cancellation. Cancelling the wait does
// not cancel the mutation; it still settles and reconciles the cache.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the settled outcome. Only meaningful after Done is closed.
func (h *Handle[T]) Result() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.err
}

// OnSettled registers fn to run at settlement, or immediately if the intent
// has already settled.
func (h *Handle[T]) OnSettled(fn func(T, error)) {
	h.mu.Lock()
	if h.settled {
		res, err := h.result, h.err
		h.mu.Unlock()
		fn(res, err)
		return
	}
	h.callbacks = append(h.callbacks, fn)
	h.mu.Unlock()
}

func (h *Handle[T]) settle(result T, err error) {
	h.mu.Lock()
	h.settled = true
	h.result = result
	h.err = err
	callbacks := h.callbacks
	h.callbacks = nil
	h.mu.Unlock()

	close(h.done)
	for _, fn := range callbacks {
		fn(result, err)
	}
}
