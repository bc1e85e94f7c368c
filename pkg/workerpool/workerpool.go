// Package workerpool runs a batch of independent per-index jobs across
// a fixed set of OS-thread workers, per spec.md §4.9: static chunking
// across cores, no inter-worker communication, one joined error at
// pool exit.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Run splits [0,n) into min(runtime.NumCPU(), n) contiguous chunks and
// runs fn over every index, one goroutine per chunk. Results land in a
// pre-allocated, index-addressed slice so workers never contend on a
// shared write target. If any job returns an error, Run returns the
// first one observed in index order alongside whatever results were
// already produced.
func Run[T any](n int, fn func(i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	if n == 0 {
		return results, nil
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				r, err := fn(i)
				if err != nil {
					errs[w] = err
					return
				}
				results[i] = r
			}
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Counter is the shared atomic metric counter spec.md §5 calls for:
// workers add to it through sync/atomic and only the final value,
// read after the pool joins, matters.
type Counter struct {
	v atomic.Int64
}

// Add adds n to the counter. Safe for concurrent use by every worker.
func (c *Counter) Add(n int64) { c.v.Add(n) }

// Load returns the counter's current value.
func (c *Counter) Load() int64 { return c.v.Load() }
