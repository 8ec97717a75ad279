package worker

import (
	"context"
	"sync"
)

// Run processes items on a bounded pool of goroutines and blocks until
// every item is handled or the context is cancelled. Items remaining
// when the context ends are skipped; in-flight items always finish.
func Run[T any](ctx context.Context, workers int, items []T, fn func(T)) {
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan T)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				fn(item)
			}
		}()
	}

	for _, item := range items {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- item:
		}
	}
	close(jobs)
	wg.Wait()
}
