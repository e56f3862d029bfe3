package flightcache

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Hammer Get from many goroutines while the flight is resolving.
// Should pass under `-race` without detector reports, and the producer
// must still run exactly once.
func TestRace_GetDuringResolve(t *testing.T) {
	var calls int64
	o := New(func(ctx context.Context) ([]string, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return []string{"a", "b", "c"}, nil
	}, nil)

	workers := 4 * runtime.GOMAXPROCS(0)
	deadline := time.Now().Add(500 * time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				v, err := o.Get(context.Background())
				if err != nil {
					t.Error(err)
					return
				}
				if len(v) != 3 {
					t.Errorf("bad value %v", v)
					return
				}
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Fatalf("producer invoked %d times, want 1", n)
	}
}
