// Package memstore is the in-memory store.Store implementation.
// It is the default backing store and the one used throughout the tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/IvanBrykalov/livesort/internal/conflate"
	"github.com/IvanBrykalov/livesort/record"
	"github.com/IvanBrykalov/livesort/store"
)

// Store keeps records in a map and pushes a fresh snapshot to every
// watcher after each upsert. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	recs   map[string]record.Record
	subs   map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	slot  *conflate.Slot[[]record.Record]
	zone  string
	zoned bool
}

// New constructs an empty store, optionally seeded with records.
func New(seed ...record.Record) *Store {
	s := &Store{
		recs: make(map[string]record.Record, len(seed)),
		subs: make(map[*subscriber]struct{}),
	}
	for _, r := range seed {
		s.recs[r.ID] = r
	}
	return s
}

// WatchAll implements store.Store.
func (s *Store) WatchAll(ctx context.Context) (<-chan []record.Record, error) {
	return s.watch(ctx, &subscriber{slot: conflate.NewSlot[[]record.Record]()})
}

// WatchZone implements store.Store.
func (s *Store) WatchZone(ctx context.Context, zone string) (<-chan []record.Record, error) {
	return s.watch(ctx, &subscriber{
		slot:  conflate.NewSlot[[]record.Record](),
		zone:  zone,
		zoned: true,
	})
}

func (s *Store) watch(ctx context.Context, sub *subscriber) (<-chan []record.Record, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, store.ErrClosed
	}
	s.subs[sub] = struct{}{}
	sub.slot.Put(s.snapshotLocked(sub)) // initial emission
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		sub.slot.Close()
	}()
	return sub.slot.C(), nil
}

// UpsertAll implements store.Store.
func (s *Store) UpsertAll(ctx context.Context, recs []record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	for _, r := range recs {
		s.recs[r.ID] = r
	}
	for sub := range s.subs {
		sub.slot.Put(s.snapshotLocked(sub))
	}
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

// Close detaches all watchers and rejects further operations.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := make([]*subscriber, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = map[*subscriber]struct{}{}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.slot.Close()
	}
	return nil
}

// snapshotLocked builds the subscriber's view. Sorted by ID only so that
// snapshots are deterministic; semantic ordering is the views' concern.
func (s *Store) snapshotLocked(sub *subscriber) []record.Record {
	out := make([]record.Record, 0, len(s.recs))
	for _, r := range s.recs {
		if sub.zoned && r.Zone != sub.zone {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ store.Store = (*Store)(nil)
