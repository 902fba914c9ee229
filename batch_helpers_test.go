package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
)

func TestChunkSlice(t *testing.T) {
	testCases := []struct {
		name     string
		items    int
		size     int
		expected []int
	}{
		{"empty", 0, 25, nil},
		{"single partial chunk", 10, 25, []int{10}},
		{"exact multiple", 50, 25, []int{25, 25}},
		{"remainder", 55, 25, []int{25, 25, 5}},
		{"size one", 3, 1, []int{1, 1, 1}},
		{"zero size", 5, 0, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items := make([]int, tc.items)
			for i := range items {
				items[i] = i
			}
			chunks := chunkSlice(items, tc.size)
			if len(chunks) != len(tc.expected) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tc.expected))
			}
			total := 0
			for i, chunk := range chunks {
				if len(chunk) != tc.expected[i] {
					t.Errorf("chunk %d has %d items, want %d", i, len(chunk), tc.expected[i])
				}
				total += len(chunk)
			}
			if total != tc.items {
				t.Errorf("chunks cover %d items, want %d", total, tc.items)
			}
		})
	}
}

func TestRunBatches(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("all batches succeed", func(t *testing.T) {
		items := make([]int, 60)
		var calls atomic.Int32
		failed := runBatches(ctx, items, logger, func(ctx context.Context, chunk []int) error {
			calls.Add(1)
			return nil
		})
		if failed != 0 {
			t.Errorf("failed = %d, want 0", failed)
		}
		// 60 items in chunks of 25 is 3 batches.
		if calls.Load() != 3 {
			t.Errorf("calls = %d, want 3", calls.Load())
		}
	})

	t.Run("transient failure retries and recovers", func(t *testing.T) {
		items := make([]int, 10)
		var calls atomic.Int32
		failed := runBatches(ctx, items, logger, func(ctx context.Context, chunk []int) error {
			if calls.Add(1) < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if failed != 0 {
			t.Errorf("failed = %d, want 0", failed)
		}
		if calls.Load() != 3 {
			t.Errorf("calls = %d, want 3", calls.Load())
		}
	})

	t.Run("persistent failure exhausts attempts", func(t *testing.T) {
		items := make([]int, 30)
		var mu sync.Mutex
		callsPerChunk := make(map[int]int)
		failed := runBatches(ctx, items, logger, func(ctx context.Context, chunk []int) error {
			mu.Lock()
			callsPerChunk[len(chunk)]++
			mu.Unlock()
			if len(chunk) == 5 {
				return errors.New("persistent")
			}
			return nil
		})
		if failed != 5 {
			t.Errorf("failed = %d, want 5", failed)
		}
		mu.Lock()
		defer mu.Unlock()
		if callsPerChunk[5] != maxBatchAttempts {
			t.Errorf("failing chunk attempted %d times, want %d", callsPerChunk[5], maxBatchAttempts)
		}
	})
}

func TestFetchBatches(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("merges chunk results", func(t *testing.T) {
		keys := make([]int, 250)
		for i := range keys {
			keys[i] = i
		}
		results := fetchBatches(ctx, keys, logger, func(ctx context.Context, chunk []int) ([]string, error) {
			out := make([]string, len(chunk))
			return out, nil
		})
		if len(results) != 250 {
			t.Errorf("got %d results, want 250", len(results))
		}
	})

	t.Run("failed chunk dropped, rest returned", func(t *testing.T) {
		keys := make([]int, 150)
		for i := range keys {
			keys[i] = i
		}
		results := fetchBatches(ctx, keys, logger, func(ctx context.Context, chunk []int) ([]string, error) {
			// The second chunk (50 keys) always fails.
			if len(chunk) == 50 {
				return nil, errors.New("persistent")
			}
			return make([]string, len(chunk)), nil
		})
		if len(results) != 100 {
			t.Errorf("got %d results, want 100", len(results))
		}
	})

	t.Run("no keys", func(t *testing.T) {
		results := fetchBatches(ctx, nil, logger, func(ctx context.Context, chunk []int) ([]string, error) {
			t.Fatal("fetch should not be called")
			return nil, nil
		})
		if results != nil {
			t.Errorf("got %v, want nil", results)
		}
	})
}
