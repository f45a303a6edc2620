package concurrency

import (
	"context"
	"sync"
)

// TaskFn handles one task of a fan-out batch.
type TaskFn func(ctx context.Context, index int) error

// FanOut runs tasks 0..tasks-1 across at most workers goroutines and
// returns the per-task errors (nil entries for successes). It always waits
// for every task to settle; there is no rollback for the ones that already
// succeeded.
func FanOut(ctx context.Context, workers, tasks int, fn TaskFn) []error {
	if tasks <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > tasks {
		workers = tasks
	}

	errs := make([]error, tasks)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				errs[idx] = fn(ctx, idx)
			}
		}()
	}

	for i := 0; i < tasks; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return errs
}
