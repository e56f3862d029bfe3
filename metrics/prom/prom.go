// Package prom exports flightcache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/livesort/flightcache"
)

// Adapter implements flightcache.Metrics and exports Prometheus counters.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	awaits   prometheus.Counter
	resolves *prometheus.CounterVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Gets served from the resolved value without suspending",
			ConstLabels: constLabels,
		}),
		awaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "awaits_total",
			Help:        "Callers that suspended on the shared flight",
			ConstLabels: constLabels,
		}),
		resolves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "resolves_total",
				Help:        "Flight resolutions by outcome",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(a.hits, a.awaits, a.resolves)
	return a
}

// Hit increments the fast-path counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Await increments the suspended-caller counter.
func (a *Adapter) Await() { a.awaits.Inc() }

// Resolve increments the resolution counter with an outcome label.
func (a *Adapter) Resolve(o flightcache.ResolveOutcome) {
	a.resolves.WithLabelValues(outcome(o)).Inc()
}

// outcome maps ResolveOutcome to a stable label value.
func outcome(o flightcache.ResolveOutcome) string {
	if o == flightcache.ResolveFallback {
		return "fallback"
	}
	return "success"
}

// Compile-time check: ensure Adapter implements flightcache.Metrics.
var _ flightcache.Metrics = (*Adapter)(nil)
