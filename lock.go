package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// This file contains the run-parameter store and the orchestrator's nightly
// idempotency lock. The lock is a single key holding the timestamp of the
// run that claimed it; a fresh timestamp means another instance already fired
// tonight, a stale one means a previous run died mid-flight.

const (
	orchestratorLockKey = "smartgo:orchestrator:lock"

	// lockStaleAfter is how old a held lock must be before a new run is
	// allowed to steal it.
	lockStaleAfter = time.Hour
)

// errRunLockHeld is returned when another orchestrator run claimed the lock
// within the staleness window.
var errRunLockHeld = errors.New("orchestrator lock held by a recent run")

// paramStore is a small key-value interface over the run-parameter backend.
// Get returns errParamNotFound when the key is absent.
type paramStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

var errParamNotFound = errors.New("parameter not found")

// redisParamStore is the production paramStore backed by Redis.
type redisParamStore struct {
	client *redis.Client
}

func (s *redisParamStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errParamNotFound
	}
	return value, err
}

func (s *redisParamStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *redisParamStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// acquireRunLock claims tonight's orchestrator run. It returns errRunLockHeld
// if another run claimed the lock less than lockStaleAfter ago; a stale lock
// is overwritten with a warning.
func (cfg *apiConfig) acquireRunLock(ctx context.Context) error {
	now := cfg.now().UTC()
	held, err := cfg.params.Get(ctx, orchestratorLockKey)
	switch {
	case errors.Is(err, errParamNotFound):
		// Free to claim.
	case err != nil:
		return fmt.Errorf("could not read orchestrator lock: %w", err)
	default:
		claimedAt, parseErr := time.Parse(time.RFC3339, held)
		if parseErr == nil && now.Sub(claimedAt) < lockStaleAfter {
			return errRunLockHeld
		}
		cfg.logger.Warn("overwriting stale orchestrator lock", "claimedAt", held)
	}
	if err := cfg.params.Set(ctx, orchestratorLockKey, now.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("could not claim orchestrator lock: %w", err)
	}
	return nil
}

// releaseRunLock drops the lock after a completed run. Failure to release is
// logged but not fatal; the staleness window clears it for the next night.
func (cfg *apiConfig) releaseRunLock(ctx context.Context) {
	if err := cfg.params.Del(ctx, orchestratorLockKey); err != nil {
		cfg.logger.Error("could not release orchestrator lock", "error", err)
	}
}
