package sqlitestore

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/IvanBrykalov/livesort/record"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{
		DSN: "file:" + filepath.Join(t.TempDir(), "records.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func recv(t *testing.T, ch <-chan []record.Record) []record.Record {
	t.Helper()
	select {
	case recs, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed")
		}
		return recs
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestUpsertAndWatchAll(t *testing.T) {
	t.Parallel()

	s := open(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.WatchAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := recv(t, ch); len(got) != 0 {
		t.Fatalf("initial snapshot = %v, want empty", got)
	}

	want := []record.Record{
		{ID: "a", Name: "Apple", Zone: "north"},
		{ID: "b", Name: "Banana", Zone: "south"},
	}
	if err := s.UpsertAll(ctx, want); err != nil {
		t.Fatal(err)
	}
	if got := recv(t, ch); !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot = %v, want %v", got, want)
	}

	// Upsert by ID replaces, never duplicates.
	if err := s.UpsertAll(ctx, []record.Record{{ID: "a", Name: "Apricot", Zone: "north"}}); err != nil {
		t.Fatal(err)
	}
	got := recv(t, ch)
	if len(got) != 2 || got[0].Name != "Apricot" {
		t.Fatalf("post-replace snapshot = %v", got)
	}
}

func TestWatchZone(t *testing.T) {
	t.Parallel()

	s := open(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.UpsertAll(ctx, []record.Record{
		{ID: "a", Name: "A", Zone: "north"},
		{ID: "b", Name: "B", Zone: "south"},
	}); err != nil {
		t.Fatal(err)
	}

	ch, err := s.WatchZone(ctx, "south")
	if err != nil {
		t.Fatal(err)
	}
	got := recv(t, ch)
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("zone snapshot = %v", got)
	}

	if err := s.UpsertAll(ctx, []record.Record{{ID: "c", Name: "C", Zone: "south"}}); err != nil {
		t.Fatal(err)
	}
	got = recv(t, ch)
	if len(got) != 2 || got[1].ID != "c" {
		t.Fatalf("zone snapshot after upsert = %v", got)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dsn := "file:" + filepath.Join(t.TempDir(), "records.db")
	ctx := context.Background()

	s, err := Open(ctx, Config{DSN: dsn})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertAll(ctx, []record.Record{{ID: "a", Name: "A"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(ctx, Config{DSN: dsn})
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch, err := s2.WatchAll(wctx)
	if err != nil {
		t.Fatal(err)
	}
	got := recv(t, ch)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("reopened snapshot = %v", got)
	}
}
