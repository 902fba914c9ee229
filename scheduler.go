package main

import (
	"context"
	"time"
)

// This file contains the wall-clock scheduler for the nightly jobs. Unlike a
// plain ticker, each job fires at a fixed UTC time of day: scrapers first so
// fresh city data is in place, the orchestrator an hour later, and the
// janitor after that to purge expired records.

type Scheduler struct {
	cfg  *apiConfig
	stop chan struct{}

	// Job funcs are fields so tests can swap them out.
	scrapeJobs     func(context.Context)
	orchestrateJob func(context.Context)
	janitorJob     func(context.Context)
}

func NewScheduler(cfg *apiConfig) *Scheduler {
	s := &Scheduler{
		cfg:  cfg,
		stop: make(chan struct{}),
	}
	s.scrapeJobs = s.runScrapeJobs
	s.orchestrateJob = cfg.runOrchestrator
	s.janitorJob = cfg.runJanitor
	return s
}

// Start launches one goroutine per nightly job, each sleeping until its next
// wall-clock firing time.
func (s *Scheduler) Start() {
	go s.runAt(s.cfg.scrapeAt, "scrapers", s.scrapeJobs)
	go s.runAt(s.cfg.orchestrateAt, "orchestrator", s.orchestrateJob)
	go s.runAt(s.cfg.janitorAt, "janitor", s.janitorJob)
}

func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) runAt(at clockTime, name string, job func(context.Context)) {
	for {
		timer := time.NewTimer(untilNext(at, s.cfg.now()))
		select {
		case <-timer.C:
			s.cfg.logger.Info("scheduler running nightly job", "job", name)
			job(context.Background())
		case <-s.stop:
			timer.Stop()
			return
		}
	}
}

// untilNext returns the duration until the next occurrence of the given UTC
// wall-clock time, strictly in the future.
func untilNext(at clockTime, now time.Time) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// runScrapeJobs refreshes both city datasets. Weather and events hit
// different providers, so they run concurrently.
func (s *Scheduler) runScrapeJobs(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.cfg.runWeatherScrape(ctx)
		close(done)
	}()
	s.cfg.runEventScrape(ctx)
	<-done
}

// runJanitor purges records whose expiry has passed: deactivated schedules
// past their grace period and scraped city data past its window.
func (cfg *apiConfig) runJanitor(ctx context.Context) {
	now := cfg.now().UTC()
	schedules, err := cfg.dbQueries.DeleteExpiredSchedules(ctx, now)
	if err != nil {
		cfg.logger.Error("janitor could not purge schedules", "error", err)
	}
	weather, err := cfg.dbQueries.DeleteExpiredWeatherDays(ctx, now)
	if err != nil {
		cfg.logger.Error("janitor could not purge weather records", "error", err)
	}
	events, err := cfg.dbQueries.DeleteExpiredEventDays(ctx, now)
	if err != nil {
		cfg.logger.Error("janitor could not purge event records", "error", err)
	}
	cfg.logger.Info("janitor run finished", "schedules", schedules, "weatherDays", weather, "eventDays", events)
}
