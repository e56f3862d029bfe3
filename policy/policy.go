// Package policy defines the cache-invalidation gate consulted before a
// refresh cycle, with pluggable strategies.
//
// ShouldRefresh is a side-effect-free predicate: callers invoke it first
// and only then decide whether to issue the remote fetch-and-store cycle.
// Strategies that need to track refresh history expose a separate Mark
// hook the caller invokes after a successful refresh.
package policy

import (
	"sync/atomic"
	"time"
)

// Refresh decides, per trigger, whether a new remote fetch-and-store
// cycle should run. Implementations must be safe for concurrent use and
// must not perform side effects inside ShouldRefresh.
type Refresh interface {
	ShouldRefresh() bool
}

// Marker is implemented by policies that track when the last refresh
// happened. Callers invoke Mark after a refresh cycle completes
// successfully; the predicate itself stays pure.
type Marker interface {
	Mark()
}

// Always refreshes on every trigger. This is the default gate.
type Always struct{}

func (Always) ShouldRefresh() bool { return true }

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// TTL refreshes when at least maxAge has passed since the last Mark.
// A fresh TTL (never marked) always refreshes.
// Safe for concurrent use.
type TTL struct {
	maxAge time.Duration
	clock  Clock

	// UnixNano of the most recent Mark, 0 = never.
	last atomic.Int64
}

// NewTTL constructs a TTL gate. A nil clock uses time.Now.
func NewTTL(maxAge time.Duration, clock Clock) *TTL {
	return &TTL{maxAge: maxAge, clock: clock}
}

func (p *TTL) now() int64 {
	if p.clock != nil {
		return p.clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// ShouldRefresh reports whether the last marked refresh is older than maxAge.
func (p *TTL) ShouldRefresh() bool {
	last := p.last.Load()
	if last == 0 {
		return true
	}
	return p.now()-last >= int64(p.maxAge)
}

// Mark records that a refresh cycle just completed.
func (p *TTL) Mark() { p.last.Store(p.now()) }

var (
	_ Refresh = Always{}
	_ Refresh = (*TTL)(nil)
	_ Marker  = (*TTL)(nil)
)
