package utils

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync"
)

// GetSemaphoreLimit returns the worker limit from SEMAPHORE_LIMIT, or the CPU count.
func GetSemaphoreLimit() int {
	if val := os.Getenv("SEMAPHORE_LIMIT"); val != "" {
		if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
			return limit
		}
	}
	return runtime.NumCPU()
}

// Worker processes one item of a WorkerPool.
type Worker[T any, R any] func(ctx context.Context, item T) (R, error)

// WorkerPool manages a pool of workers processing items concurrently.
//
// Worker goroutines are started by ProcessItems and exit when the input is
// drained or the context is cancelled. ProcessItems blocks until all of them
// have returned. Panics in workers are recovered and reported as PanicError.
type WorkerPool[T any, R any] struct {
	numWorkers int
	worker     Worker[T, R]
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool[T any, R any](numWorkers int, worker Worker[T, R]) *WorkerPool[T, R] {
	if numWorkers <= 0 {
		numWorkers = GetSemaphoreLimit()
	}
	return &WorkerPool[T, R]{
		numWorkers: numWorkers,
		worker:     worker,
	}
}

type indexed[T any] struct {
	item  T
	index int
}

// ProcessItems runs the worker over items. Results and errors are positional.
func (wp *WorkerPool[T, R]) ProcessItems(ctx context.Context, items []T) ([]R, []error) {
	if len(items) == 0 {
		return nil, nil
	}

	queue := make(chan indexed[T], len(items))
	for i, item := range items {
		queue <- indexed[T]{item: item, index: i}
	}
	close(queue)

	results := make([]R, len(items))
	errs := make([]error, len(items))
	var wg sync.WaitGroup

	workers := wp.numWorkers
	if workers > len(items) {
		workers = len(items)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case next, ok := <-queue:
					if !ok {
						return
					}
					func() {
						defer RecoverWithCallback(func(err error) {
							errs[next.index] = err
						})
						results[next.index], errs[next.index] = wp.worker(ctx, next.item)
					}()
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	wg.Wait()
	return results, errs
}

// Batch splits items into consecutive batches of at most batchSize.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 10
	}

	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}
