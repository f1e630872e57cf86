// Package signals provides typed in-process signals: named dispatch
// points that deliver events synchronously to connected handlers in
// connection order.
//
// Handlers may disconnect themselves during delivery, which is how
// one-shot handlers are built:
//
//	var receipt signals.Receipt
//	receipt = sig.Connect(func(ctx context.Context, e Event) error {
//		if err := handle(ctx, e); err != nil {
//			return err
//		}
//		sig.Disconnect(receipt)
//		return nil
//	})
//
// A handler that fails stays connected and is retried on the next send.
package signals

import (
	"context"
	"sync"
)

// Receipt identifies a connected handler. The zero value is never
// issued, so it can be used as a "not connected" sentinel.
type Receipt uint64

// Handler processes one event. Returning an error aborts the send.
type Handler[E any] func(ctx context.Context, event E) error

// Signal is a named dispatch point for events of type E. The zero
// value is not usable; construct with New.
type Signal[E any] struct {
	name string

	mu       sync.Mutex
	nextID   Receipt
	handlers []entry[E]
}

type entry[E any] struct {
	id Receipt
	fn Handler[E]
}

// New creates a signal. The name appears in logs and error messages.
func New[E any](name string) *Signal[E] {
	return &Signal[E]{name: name}
}

// Name returns the signal's name.
func (s *Signal[E]) Name() string { return s.name }

// Connect registers a handler and returns its receipt.
func (s *Signal[E]) Connect(fn Handler[E]) Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.handlers = append(s.handlers, entry[E]{id: s.nextID, fn: fn})
	return s.nextID
}

// Disconnect removes the handler identified by the receipt. It reports
// whether a handler was removed and is safe to call during delivery.
func (s *Signal[E]) Disconnect(r Receipt) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.handlers {
		if e.id == r {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of connected handlers.
func (s *Signal[E]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// Send delivers the event to every connected handler in connection
// order. Delivery stops at the first handler error, which is returned.
// Handlers run outside the signal's lock, so they may connect or
// disconnect handlers; changes take effect on the next send.
func (s *Signal[E]) Send(ctx context.Context, event E) error {
	s.mu.Lock()
	snapshot := make([]entry[E], len(s.handlers))
	copy(snapshot, s.handlers)
	s.mu.Unlock()

	for _, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.fn(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
