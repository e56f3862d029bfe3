package repo

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/IvanBrykalov/livesort/record"
	"github.com/IvanBrykalov/livesort/store/memstore"
)

// Concurrent consumers, refreshes, and direct upserts against one
// Repository. Should pass under `-race` without detector reports.
func TestRace_RepositoryPipeline(t *testing.T) {
	st := memstore.New()
	rem := &fakeRemote{
		order: record.Order{"k1", "k3", "k2"},
		all: []record.Record{
			{ID: "k1", Name: "One", Zone: "z"},
			{ID: "k2", Name: "Two", Zone: "z"},
		},
		zones: map[string][]record.Record{
			"z": {{ID: "k3", Name: "Three", Zone: "z"}},
		},
	}
	r := New(Options{Store: st, Remote: rem})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workers := 2 * runtime.GOMAXPROCS(0)
	deadline := time.Now().Add(time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for time.Now().Before(deadline) {
				switch id % 4 {
				case 0:
					sctx, scancel := context.WithCancel(ctx)
					ch, err := r.Sorted(sctx)
					if err == nil {
						<-ch
					}
					scancel()
				case 1:
					sctx, scancel := context.WithCancel(ctx)
					ch, err := r.SortedZone(sctx, "z")
					if err == nil {
						<-ch
					}
					scancel()
				case 2:
					_ = r.RefreshAll(ctx)
				default:
					_ = st.UpsertAll(ctx, []record.Record{
						{ID: "w" + strconv.Itoa(id), Name: "W", Zone: "z"},
					})
				}
			}
		}(w)
	}
	wg.Wait()
}
