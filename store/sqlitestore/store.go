// Package sqlitestore is the persistent store.Store implementation backed
// by modernc.org/sqlite (pure Go, no cgo).
//
// Watch semantics match memstore: the store keeps a subscriber registry
// and, after every committed upsert, re-runs each subscriber's query and
// pushes the fresh snapshot through a conflating slot.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/IvanBrykalov/livesort/internal/conflate"
	"github.com/IvanBrykalov/livesort/record"
	"github.com/IvanBrykalov/livesort/store"
)

// Config configures a sqlite-backed store.
type Config struct {
	// DSN is the sqlite data source, e.g. "file:records.db" or a path
	// under the caller's data directory.
	DSN string

	// Table is the records table name. Empty means "records".
	// The table is created if it does not exist.
	Table string
}

// Store is a sqlite-backed record store. Safe for concurrent use.
type Store struct {
	db    *sql.DB
	table string

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	slot  *conflate.Slot[[]record.Record]
	zone  string
	zoned bool
}

// Open opens (and if needed initializes) the store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlitestore: empty DSN")
	}
	table := cfg.Table
	if table == "" {
		table = "records"
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}
	// Writes are serialized through one connection; sqlite allows a
	// single writer anyway and this avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		zone TEXT NOT NULL DEFAULT ''
	)`, table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitestore: init schema: %w", err)
	}

	return &Store{
		db:    db,
		table: table,
		subs:  make(map[*subscriber]struct{}),
	}, nil
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
	s.mu.Unlock()

	// Initial emission outside the registry lock; queries can be slow.
	recs, err := s.query(ctx, sub)
	if err != nil {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		return nil, err
	}
	sub.slot.Put(recs)

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		sub.slot.Close()
	}()
	return sub.slot.C(), nil
}

// UpsertAll implements store.Store. The whole batch commits atomically;
// subscribers are re-queried only after a successful commit.
func (s *Store) UpsertAll(ctx context.Context, recs []record.Record) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrClosed
	}
	s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: begin: %w", err)
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (id, name, zone) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, zone = excluded.zone`, s.table)
	for _, r := range recs {
		if _, err := tx.ExecContext(ctx, stmt, r.ID, r.Name, r.Zone); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlitestore: upsert %q: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore: commit: %w", err)
	}

	s.notify(ctx)
	return nil
}

// notify re-runs every subscriber's query and pushes the result.
func (s *Store) notify(ctx context.Context) {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		recs, err := s.query(ctx, sub)
		if err != nil {
			// A detached subscriber or a failed read must not fail the
			// writer; the next change re-queries again.
			continue
		}
		sub.slot.Put(recs)
	}
}

func (s *Store) query(ctx context.Context, sub *subscriber) ([]record.Record, error) {
	q := fmt.Sprintf("SELECT id, name, zone FROM %s ORDER BY id", s.table)
	args := []any{}
	if sub.zoned {
		q = fmt.Sprintf("SELECT id, name, zone FROM %s WHERE zone = ? ORDER BY id", s.table)
		args = append(args, sub.zone)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query: %w", err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		var r record.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Zone); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: rows: %w", err)
	}
	return out, nil
}

// Close detaches all watchers and closes the database.
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
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)
