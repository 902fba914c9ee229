package main

import (
	"context"
	"errors"
	"sync"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// This file contains the nightly orchestrator. It fans the full schedule
// population out to the forecast workers: scan every active schedule, project
// it to the fields the worker needs, partition into chunks and publish one
// queue message per chunk. A coordination lock makes the fan-out idempotent
// across overlapping triggers.

const (
	chunkSize        = 1000
	schedulePageSize = 500
	publishBatchSize = 10
)

// runOrchestrator executes one nightly fan-out. A second invocation within
// the lock's staleness window is a no-op.
func (cfg *apiConfig) runOrchestrator(ctx context.Context) {
	if err := cfg.acquireRunLock(ctx); err != nil {
		if errors.Is(err, errRunLockHeld) {
			cfg.logger.Info("orchestrator already ran tonight, skipping")
			return
		}
		cfg.logger.Error("orchestrator could not acquire lock", "error", err)
		return
	}
	defer cfg.releaseRunLock(ctx)

	refs, err := cfg.collectRouteRefs(ctx)
	if err != nil {
		cfg.logger.Error("orchestrator could not scan schedules", "error", err)
		return
	}
	if len(refs) == 0 {
		cfg.logger.Info("orchestrator found no active schedules")
		return
	}

	chunks := chunkSlice(refs, chunkSize)
	published, failed := cfg.publishChunks(ctx, chunks)
	cfg.logger.Info("orchestrator run finished",
		"routes", len(refs), "chunks", len(chunks), "published", published, "failed", failed)
}

// collectRouteRefs pages through the active schedules and projects each into
// the reference carried in queue chunks.
func (cfg *apiConfig) collectRouteRefs(ctx context.Context) ([]RouteRef, error) {
	var refs []RouteRef
	after := uuid.Nil
	for {
		page, err := cfg.dbQueries.ListActiveSchedules(ctx, database.ListActiveSchedulesParams{
			AfterRouteID: after,
			PageSize:     schedulePageSize,
		})
		if err != nil {
			return nil, err
		}
		for _, schedule := range page {
			refs = append(refs, databaseScheduleToRouteRef(schedule))
		}
		if len(page) < schedulePageSize {
			return refs, nil
		}
		after = page[len(page)-1].RouteID
	}
}

// publishChunks publishes one message per chunk, in batches of
// publishBatchSize. Failed messages retry individually with backoff; the
// final residue is logged and reported, not fatal.
func (cfg *apiConfig) publishChunks(ctx context.Context, chunks [][]RouteRef) (published, failed int) {
	for batchStart, batch := range chunkSlice(chunks, publishBatchSize) {
		var wg sync.WaitGroup
		outcomes := make(chan bool, len(batch))
		for i, chunk := range batch {
			chunkIndex := batchStart*publishBatchSize + i
			wg.Add(1)
			go func(chunkIndex int, chunk []RouteRef) {
				defer wg.Done()
				err := backoff.Retry(func() error {
					return cfg.publisher.PublishChunk(ctx, ChunkMessage{Routes: chunk}, chunkIndex)
				}, backoff.WithContext(newBatchBackoff(), ctx))
				if err != nil {
					cfg.logger.Error("could not publish chunk after retries", "chunkIndex", chunkIndex, "routes", len(chunk), "error", err)
					outcomes <- false
					return
				}
				chunksPublishedTotal.Inc()
				outcomes <- true
			}(chunkIndex, chunk)
		}
		wg.Wait()
		close(outcomes)
		for ok := range outcomes {
			if ok {
				published++
			} else {
				failed++
			}
		}
	}
	return published, failed
}
