package flightcache

// ResolveOutcome tags how the value was captured.
type ResolveOutcome int

const (
	// ResolveSuccess — the producer returned a value.
	ResolveSuccess ResolveOutcome = iota
	// ResolveFallback — the producer failed and the fallback was cached.
	ResolveFallback
)

// Metrics exposes observability hooks for a Once.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	// Hit — Get returned the resolved value without suspending.
	Hit()
	// Await — a caller suspended on the shared flight (leader included).
	Await()
	// Resolve — the flight finished with the given outcome. Fires once
	// per Once lifetime.
	Resolve(ResolveOutcome)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// Safe for concurrent use.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                   {}
func (NoopMetrics) Await()                 {}
func (NoopMetrics) Resolve(ResolveOutcome) {}

var _ Metrics = NoopMetrics{}
