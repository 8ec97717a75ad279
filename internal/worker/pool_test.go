package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRunProcessesEveryItem(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	var mu sync.Mutex
	seen := make(map[int]int)
	Run(context.Background(), 4, items, func(i int) {
		mu.Lock()
		seen[i]++
		mu.Unlock()
	})

	if len(seen) != 100 {
		t.Fatalf("processed %d items, want 100", len(seen))
	}
	for i, count := range seen {
		if count != 1 {
			t.Fatalf("item %d processed %d times", i, count)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var current, peak atomic.Int64
	block := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(context.Background(), 3, make([]int, 30), func(int) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-block
			current.Add(-1)
		})
	}()

	close(block)
	<-done

	if got := peak.Load(); got > 3 {
		t.Fatalf("peak concurrency %d exceeded worker bound 3", got)
	}
}

func TestRunStopsSchedulingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var processed atomic.Int64
	items := make([]int, 1000)
	Run(ctx, 1, items, func(int) {
		if processed.Add(1) == 3 {
			cancel()
		}
	})

	// In-flight items finish; remaining items are skipped.
	if got := processed.Load(); got >= 1000 {
		t.Fatalf("processed %d items despite cancellation", got)
	}
}

func TestRunWithZeroWorkersStillCompletes(t *testing.T) {
	var processed atomic.Int64
	Run(context.Background(), 0, []int{1, 2, 3}, func(int) {
		processed.Add(1)
	})
	if processed.Load() != 3 {
		t.Fatalf("processed %d items, want 3", processed.Load())
	}
}
