package repo

import (
	"context"

	"github.com/IvanBrykalov/livesort/internal/conflate"
	"github.com/IvanBrykalov/livesort/record"
)

// Sorted returns a live stream of sorted snapshots of the whole
// collection: combine-latest of the store's watch stream and the cached
// sort order.
//
// Semantics:
//   - the first snapshot is delivered only after both the collection and
//     the order have produced a value; afterwards every emission from
//     either side re-sorts the latest collection;
//   - the order side fires once (the cache resolves once) and never
//     changes for the lifetime of the stream;
//   - sorting runs on the pipeline goroutine, never on the consumer's;
//   - output is conflated: a slow consumer sees only the newest snapshot;
//   - cancelling ctx detaches everything and closes the channel.
func (r *Repository) Sorted(ctx context.Context) (<-chan []record.Record, error) {
	updates, err := r.store.WatchAll(ctx)
	if err != nil {
		return nil, err
	}

	// The order arrives through a one-element stream so the combiner can
	// treat both inputs uniformly.
	orderCh := make(chan record.Order, 1)
	go func() {
		order, err := r.order.Get(ctx)
		if err != nil {
			return // ctx cancelled; the combiner exits on its own
		}
		orderCh <- order
	}()

	out := conflate.NewSlot[[]record.Record]()
	go func() {
		defer out.Close()
		var (
			recs      []record.Record
			order     record.Order
			haveRecs  bool
			haveOrder bool
		)
		for {
			select {
			case rs, ok := <-updates:
				if !ok {
					return
				}
				recs, haveRecs = rs, true
			case o := <-orderCh:
				order, haveOrder = o, true
				orderCh = nil // single emission; block this arm from now on
			case <-ctx.Done():
				return
			}
			if haveRecs && haveOrder {
				out.Put(record.SortByOrder(recs, order))
			}
		}
	}()
	return out.C(), nil
}

// SortedZone returns a live stream of sorted snapshots of one zone.
//
// Unlike Sorted this is not combine-latest: the zone watch is a
// request/response-style handle, so the pipeline awaits the cached order
// for every upstream emission (cheap after the first resolution) and
// re-sorts. Same conflation and detach semantics as Sorted.
func (r *Repository) SortedZone(ctx context.Context, zone string) (<-chan []record.Record, error) {
	updates, err := r.store.WatchZone(ctx, zone)
	if err != nil {
		return nil, err
	}

	out := conflate.NewSlot[[]record.Record]()
	go func() {
		defer out.Close()
		for {
			select {
			case rs, ok := <-updates:
				if !ok {
					return
				}
				order, err := r.order.Get(ctx)
				if err != nil {
					return // ctx cancelled while awaiting the order
				}
				out.Put(record.SortByOrder(rs, order))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out.C(), nil
}
