// internal/app/sync/subscription.go
package sync

import (
	"context"
	"sync"
)

// changeIterator is the store-level listener a live query rides on.
// *mongo.ChangeStream satisfies it; tests substitute a fake to exercise the
// lifecycle without a replica set.
type changeIterator interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// watchFunc registers the store-level listener for one subscription.
type watchFunc func(ctx context.Context) (changeIterator, error)

// snapshotFunc loads the current full result for one subscription. It runs
// once at subscribe time and once per change notification; the stream
// carries whole snapshots, never deltas.
type snapshotFunc[T any] func(ctx context.Context) (T, error)

// Subscription is one live query: a push stream of full snapshots that runs
// until cancelled or until the store reports an error.
//
// Contract:
//   - Updates() is closed exactly once, after which Err() says why: nil for
//     caller-initiated cancel (or an immediately-closed empty stream), the
//     terminal store error otherwise.
//   - Cancel is idempotent and safe from any goroutine; cancelling one
//     subscription never affects another.
//   - The store-level listener is deregistered exactly once, whether
//     teardown was caller-initiated or error-initiated.
type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc
	once    sync.Once

	mu  sync.Mutex
	err error
}

// Updates returns the snapshot stream. Slow consumers never block the
// store listener: a pending unread snapshot is replaced by the newer one.
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

// Err reports why the stream closed. Only meaningful after Updates is
// closed; nil means a clean close.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel stops the subscription. Repeated calls are no-ops.
func (s *Subscription[T]) Cancel() {
	s.once.Do(s.cancel)
}

func (s *Subscription[T]) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// push delivers a snapshot without ever blocking: if the consumer has not
// read the previous one, it is dropped in favor of the newer state.
func (s *Subscription[T]) push(v T) {
	for {
		select {
		case s.updates <- v:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

// openSubscription registers the store listener and starts the bridge
// goroutine that turns change notifications into snapshot emissions.
func openSubscription[T any](ctx context.Context, watch watchFunc, snapshot snapshotFunc[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)

	sub := &Subscription[T]{
		updates: make(chan T, 1),
		cancel:  cancel,
	}

	changes, err := watch(ctx)
	if err != nil {
		// Listener never registered; nothing to tear down.
		cancel()
		sub.setErr(err)
		close(sub.updates)
		return sub
	}

	go func() {
		// The goroutine owns the listener: this is the single place it is
		// deregistered, for both cancel and error paths.
		defer close(sub.updates)
		defer changes.Close(context.Background())

		emit := func() bool {
			snap, err := snapshot(ctx)
			if err != nil {
				if ctx.Err() == nil {
					sub.setErr(err)
				}
				return false
			}
			sub.push(snap)
			return true
		}

		if !emit() {
			return
		}

		for changes.Next(ctx) {
			if !emit() {
				return
			}
		}

		// Next returned false: either our context was cancelled (clean
		// close) or the stream died (terminal error).
		if ctx.Err() == nil {
			sub.setErr(changes.Err())
		}
	}()

	return sub
}

// closedSubscription returns a stream that is already over: Updates is
// closed and Err is err (nil for the unauthenticated empty stream).
func closedSubscription[T any](err error) *Subscription[T] {
	sub := &Subscription[T]{
		updates: make(chan T),
		cancel:  func() {},
	}
	sub.setErr(err)
	close(sub.updates)
	return sub
}
