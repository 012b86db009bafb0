package pipeline

import (
	"context"
	"runtime"
	"sync"
)

// Task handles one item. index is the item's position in the input, so
// tasks can write results into their own slot of a preallocated slice.
type Task[T any] func(ctx context.Context, index int, item T) error

// Run fans items out to a bounded pool of workers and returns the errors the
// tasks reported. Items not yet dispatched when ctx is done are skipped and
// reported once as ctx.Err().
func Run[T any](ctx context.Context, items []T, workers int, fn Task[T]) []error {
	if len(items) == 0 || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}
	if workers > len(items) {
		workers = len(items)
	}

	type job struct {
		index int
		item  T
	}
	jobs := make(chan job)
	errs := make(chan error, len(items)+1)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := fn(ctx, j.index, j.item); err != nil {
					errs <- err
				}
			}
		}()
	}

dispatch:
	for i, item := range items {
		select {
		case jobs <- job{index: i, item: item}:
		case <-ctx.Done():
			errs <- ctx.Err()
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	out := make([]error, 0, len(errs))
	for err := range errs {
		out = append(out, err)
	}
	return out
}
