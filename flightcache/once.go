// Package flightcache provides Once, a single-flight memoized asynchronous
// value with a fallback on failure.
//
// Once holds the result of exactly one producer invocation for its whole
// lifetime. Concurrent callers that arrive before the first resolution
// share one in-flight computation; a failing producer resolves the value
// to a fallback instead of surfacing the error or retrying. Callers that
// need a retry must construct a new Once.
package flightcache

import (
	"context"
	"sync"
)

// Producer computes the cached value. It is invoked at most once per Once.
type Producer[V any] func(ctx context.Context) (V, error)

// Fallback supplies the value cached when the producer fails. It is
// invoked at most once, and only on failure.
type Fallback[V any] func() V

// Once is a single-flight, fallback-resolving memoized value.
//
// State machine: empty → in-flight → resolved. The in-flight → resolved
// transition is permanent; there is no path back to empty, including after
// producer failure (failure resolves to the fallback, which then behaves
// like any resolved value).
//
// All methods are safe for concurrent use.
type Once[V any] struct {
	produce  Producer[V]
	fallback Fallback[V]
	metrics  Metrics

	mu       sync.Mutex
	inflight chan struct{} // non-nil while the producer runs; closed on resolve
	resolved bool
	val      V
}

// New constructs a Once around produce. On producer failure the value
// resolves to fallback(); a nil fallback resolves to the zero value.
func New[V any](produce Producer[V], fallback Fallback[V], opts ...Option[V]) *Once[V] {
	if produce == nil {
		panic("flightcache: nil producer")
	}
	o := &Once[V]{
		produce:  produce,
		fallback: fallback,
		metrics:  NoopMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a Once.
type Option[V any] func(*Once[V])

// WithMetrics wires an observability sink. Nil is ignored.
func WithMetrics[V any](m Metrics) Option[V] {
	return func(o *Once[V]) {
		if m != nil {
			o.metrics = m
		}
	}
}

// Get returns the cached value, starting the producer if this is the first
// call and joining the in-flight computation otherwise.
//
// Concurrency notes:
//   - The first caller becomes the leader and runs the producer; followers
//     wait on a shared one-shot channel. Publishing the value
//     happens-before the close, so reads after <-done observe it.
//   - ctx cancellation unblocks only the cancelled waiter with ctx.Err();
//     the producer keeps running (under context.WithoutCancel) and its
//     result is cached for everyone else.
//   - A producer error is swallowed here: every waiter receives the
//     fallback value and nil error.
func (o *Once[V]) Get(ctx context.Context) (V, error) {
	o.mu.Lock()
	if o.resolved {
		v := o.val
		o.mu.Unlock()
		o.metrics.Hit()
		return v, nil
	}
	if done := o.inflight; done != nil {
		// Join the existing flight.
		o.mu.Unlock()
		o.metrics.Await()
		return o.wait(ctx, done)
	}

	// Leader: empty → in-flight.
	done := make(chan struct{})
	o.inflight = done
	o.mu.Unlock()

	// The flight outlives the leader's ctx: the result is shared state,
	// cached regardless of whether the original requester is still there.
	go o.run(context.WithoutCancel(ctx), done)

	o.metrics.Await()
	return o.wait(ctx, done)
}

// Resolved reports whether the value has been captured (success or
// fallback). It never blocks.
func (o *Once[V]) Resolved() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolved
}

func (o *Once[V]) run(ctx context.Context, done chan struct{}) {
	v, err := o.produce(ctx)
	if err != nil {
		if o.fallback != nil {
			v = o.fallback()
		} else {
			var zero V
			v = zero
		}
		o.metrics.Resolve(ResolveFallback)
	} else {
		o.metrics.Resolve(ResolveSuccess)
	}

	o.mu.Lock()
	o.val = v
	o.resolved = true
	o.inflight = nil
	o.mu.Unlock()
	close(done)
}

func (o *Once[V]) wait(ctx context.Context, done <-chan struct{}) (V, error) {
	select {
	case <-done:
		o.mu.Lock()
		v := o.val
		o.mu.Unlock()
		return v, nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
