package md2site

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps the number of pages converted at once.
	MaxPoolSize = 16
)

// ResolvePoolSize determines the worker count.
// Priority: explicit workers > GOMAXPROCS (adjusted by automaxprocs in containers).
func ResolvePoolSize(workers int) int {
	n := workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(MinPoolSize, min(n, MaxPoolSize))
}

// runIndexed calls fn for every index in [0, n) on at most workers goroutines.
// Results are written by fn into slots addressed by index, so no locking is
// needed. The first failure cancels the remaining work; the error of the
// lowest failed index is returned. Panics become errors wrapping ErrInternal.
func runIndexed(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	workers = min(ResolvePoolSize(workers), n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make([]error, n)
	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					errs[i] = ctx.Err()
					continue
				}
				if err := callRecovered(ctx, i, fn); err != nil {
					errs[i] = err
					cancel()
				}
			}
		}()
	}
	wg.Wait()

	var cancelled error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if cancelled == nil {
				cancelled = err
			}
			continue
		}
		return err
	}
	return cancelled
}

func callRecovered(ctx context.Context, i int, fn func(context.Context, int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()
	return fn(ctx, i)
}
