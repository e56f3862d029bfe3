// Package store defines the storage contract consumed by the sorted
// views: an idempotent upsert plus live snapshot queries that re-emit
// whenever the stored collection changes.
//
// Implementations live in subpackages: memstore (in-memory, the default)
// and sqlitestore (persistent, modernc.org/sqlite).
package store

import (
	"context"
	"errors"

	"github.com/IvanBrykalov/livesort/record"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Store is a record collection with live queries.
// All methods are safe for concurrent use.
//
// Watch semantics shared by all implementations:
//   - the returned channel delivers the current snapshot immediately,
//     then a fresh snapshot after every change;
//   - delivery is conflated per subscriber: a slow consumer observes
//     only the most recent snapshot, never a backlog;
//   - cancelling ctx detaches the subscriber and closes the channel;
//   - snapshot element order is unspecified (views apply their own
//     ordering).
type Store interface {
	// WatchAll streams snapshots of the whole collection.
	WatchAll(ctx context.Context) (<-chan []record.Record, error)

	// WatchZone streams snapshots of the records in one zone. The zone
	// query is re-evaluated on every change.
	WatchZone(ctx context.Context, zone string) (<-chan []record.Record, error)

	// UpsertAll inserts or replaces records by ID.
	UpsertAll(ctx context.Context, recs []record.Record) error
}
