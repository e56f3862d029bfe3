// Package repo wires the pieces together: a storage collaborator with
// live queries, a remote client, a single-flight cached sort order, and
// the refresh gate. It exposes continuously sorted record streams and
// the refresh operations that feed them.
//
// Data flow: refresh trigger → gate → remote fetch → store upsert →
// store watch emits → combine with the cached order → sorted snapshot.
package repo

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/livesort/flightcache"
	"github.com/IvanBrykalov/livesort/policy"
	"github.com/IvanBrykalov/livesort/record"
	"github.com/IvanBrykalov/livesort/remote"
	"github.com/IvanBrykalov/livesort/store"
)

// Options configures a Repository. Zero values get sane defaults in New:
//   - nil Gate     -> policy.Always{}
//   - nil Fallback -> empty order (views degrade to name ordering)
//   - nil Metrics  -> flightcache.NoopMetrics
//   - nil Logger   -> discard
type Options struct {
	// Store is the record storage. Required.
	Store store.Store

	// Remote is the API client. Required.
	Remote remote.Client

	// Gate decides whether a refresh trigger issues a remote fetch.
	Gate policy.Refresh

	// Fallback supplies the sort order cached when the remote fetch
	// fails. The failure is permanent for the repository's lifetime;
	// build a new Repository to retry.
	Fallback func() record.Order

	// Metrics observes the sort-order cache.
	Metrics flightcache.Metrics

	// Logger receives structured refresh/fallback events.
	Logger *log.Logger
}

// Repository is the shared handle consumers use for sorted views and
// refresh triggers. One sort-order flight is shared by every view of the
// same Repository. All methods are safe for concurrent use.
type Repository struct {
	store  store.Store
	remote remote.Client
	gate   policy.Refresh
	order  *flightcache.Once[record.Order]
	log    *log.Logger
}

// New constructs a Repository.
func New(opt Options) *Repository {
	if opt.Store == nil {
		panic("repo: Store is required")
	}
	if opt.Remote == nil {
		panic("repo: Remote is required")
	}
	if opt.Gate == nil {
		opt.Gate = policy.Always{}
	}
	if opt.Fallback == nil {
		opt.Fallback = func() record.Order { return nil }
	}
	if opt.Logger == nil {
		opt.Logger = log.New(io.Discard)
	}

	r := &Repository{
		store:  opt.Store,
		remote: opt.Remote,
		gate:   opt.Gate,
		log:    opt.Logger,
	}
	r.order = flightcache.New(
		func(ctx context.Context) (record.Order, error) {
			order, err := r.remote.FetchOrder(ctx)
			if err != nil {
				r.log.Warn("sort order fetch failed, caching fallback", "err", err)
				return nil, err
			}
			r.log.Debug("sort order resolved", "len", len(order))
			return order, nil
		},
		opt.Fallback,
		flightcache.WithMetrics[record.Order](opt.Metrics),
	)
	return r
}

// Order returns the cached sort order, fetching it on first use. All
// concurrent first callers share one fetch; a failed fetch resolves to
// the fallback for the lifetime of the Repository.
func (r *Repository) Order(ctx context.Context) (record.Order, error) {
	return r.order.Get(ctx)
}

// RefreshAll pulls the full record set from the remote and upserts it
// into the store, if the gate allows. Consumers observe the result only
// through the live views; no data is returned here.
//
// A fetch failure propagates and nothing is written.
func (r *Repository) RefreshAll(ctx context.Context) error {
	if !r.gate.ShouldRefresh() {
		r.log.Debug("refresh skipped by gate")
		return nil
	}
	recs, err := r.remote.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("repo: refresh: %w", err)
	}
	if err := r.store.UpsertAll(ctx, recs); err != nil {
		return fmt.Errorf("repo: refresh: %w", err)
	}
	r.markRefreshed()
	r.log.Info("refreshed records", "count", len(recs))
	return nil
}

// RefreshZone is RefreshAll scoped to one zone.
func (r *Repository) RefreshZone(ctx context.Context, zone string) error {
	if !r.gate.ShouldRefresh() {
		r.log.Debug("refresh skipped by gate", "zone", zone)
		return nil
	}
	recs, err := r.remote.FetchZone(ctx, zone)
	if err != nil {
		return fmt.Errorf("repo: refresh zone %q: %w", zone, err)
	}
	if err := r.store.UpsertAll(ctx, recs); err != nil {
		return fmt.Errorf("repo: refresh zone %q: %w", zone, err)
	}
	r.markRefreshed()
	r.log.Info("refreshed zone", "zone", zone, "count", len(recs))
	return nil
}

// RefreshZones refreshes several zones concurrently. The gate is
// consulted once per zone (RefreshZone semantics apply unchanged);
// the first error cancels the remaining fetches.
func (r *Repository) RefreshZones(ctx context.Context, zones ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, zone := range zones {
		zone := zone
		g.Go(func() error { return r.RefreshZone(ctx, zone) })
	}
	return g.Wait()
}

// markRefreshed lets history-tracking gates record the completed cycle.
func (r *Repository) markRefreshed() {
	if m, ok := r.gate.(policy.Marker); ok {
		m.Mark()
	}
}
