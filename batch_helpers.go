package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// This file contains generic helpers for running storage operations in
// size-limited batches. Reads go out 100 keys at a time and writes 25 items
// at a time; each batch retries transient failures with exponential backoff
// before it is counted as failed.

const (
	batchReadSize    = 100
	batchWriteSize   = 25
	maxBatchAttempts = 4
)

// chunkSlice splits a slice into chunks of at most size elements.
func chunkSlice[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// newBatchBackoff builds the retry policy shared by all batch operations:
// 100ms initial delay doubling on each attempt, maxBatchAttempts attempts total.
func newBatchBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0
	return backoff.WithMaxRetries(b, maxBatchAttempts-1)
}

// runBatches splits items into write-sized chunks, runs fn once per chunk
// concurrently, and retries each failing chunk with backoff. It returns the
// number of items whose chunk still failed after all attempts.
func runBatches[T any](ctx context.Context, items []T, logger *slog.Logger, fn func(context.Context, []T) error) int {
	chunks := chunkSlice(items, batchWriteSize)
	if len(chunks) == 0 {
		return 0
	}

	var wg sync.WaitGroup
	failed := make(chan int, len(chunks))
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []T) {
			defer wg.Done()
			err := backoff.Retry(func() error {
				return fn(ctx, chunk)
			}, backoff.WithContext(newBatchBackoff(), ctx))
			if err != nil {
				logger.Error("batch write failed after retries", "items", len(chunk), "error", err)
				failed <- len(chunk)
			}
		}(chunk)
	}
	wg.Wait()
	close(failed)

	total := 0
	for n := range failed {
		total += n
	}
	return total
}

// fetchBatches splits keys into read-sized chunks, runs fn once per chunk
// concurrently with the same retry policy, and merges the results. A chunk
// that fails after all attempts is logged and dropped; callers treat missing
// records as absent data.
func fetchBatches[K, R any](ctx context.Context, keys []K, logger *slog.Logger, fn func(context.Context, []K) ([]R, error)) []R {
	chunks := chunkSlice(keys, batchReadSize)
	if len(chunks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	results := make(chan []R, len(chunks))
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []K) {
			defer wg.Done()
			var rows []R
			err := backoff.Retry(func() error {
				var fetchErr error
				rows, fetchErr = fn(ctx, chunk)
				return fetchErr
			}, backoff.WithContext(newBatchBackoff(), ctx))
			if err != nil {
				logger.Error("batch read failed after retries", "keys", len(chunk), "error", err)
				return
			}
			results <- rows
		}(chunk)
	}
	wg.Wait()
	close(results)

	var merged []R
	for rows := range results {
		merged = append(merged, rows...)
	}
	return merged
}
