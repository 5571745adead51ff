package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"pactum/pkg/platform/sentinel"
)

// ConcurrentResult tallies the outcomes of a concurrent store exercise by
// the sentinel categories ledger races actually produce.
type ConcurrentResult struct {
	Successes  int32
	Duplicates int32
	ChainMiss  int32
	Conflicts  int32
	NotFounds  int32
	Errors     int32
}

// Total returns the number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Duplicates + r.ChainMiss + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent fires fn from n goroutines at once and buckets each outcome.
// Replaces the WaitGroup-plus-atomic-counters boilerplate in store tests.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, duplicates, chainMisses, conflicts, notFounds, errs atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrDuplicateReceipt):
				duplicates.Add(1)
			case errors.Is(err, sentinel.ErrInvalidChain):
				chainMisses.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			case errors.Is(err, sentinel.ErrNotFound):
				notFounds.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes:  successes.Load(),
		Duplicates: duplicates.Load(),
		ChainMiss:  chainMisses.Load(),
		Conflicts:  conflicts.Load(),
		NotFounds:  notFounds.Load(),
		Errors:     errs.Load(),
	}
}

// RunConcurrentCollect fires fn from n goroutines and keeps every error for
// inspection, for races where the test cares about more than the category.
func RunConcurrentCollect(goroutines int, fn func(idx int) error) (successes int32, errs []error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var successCount atomic.Int32
	collected := make([]error, 0)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := fn(idx); err != nil {
				mu.Lock()
				collected = append(collected, err)
				mu.Unlock()
				return
			}
			successCount.Add(1)
		}(i)
	}

	wg.Wait()
	return successCount.Load(), collected
}
