package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This file defines the Prometheus metrics that are exposed by the application.

// httpRequestsTotal is a Prometheus counter vector that tracks the total number of HTTP requests.
// It is partitioned by the request's URL path, HTTP method, and the resulting status code.
var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "smartgo_http_requests_total",
	Help: "Total number of HTTP requests by path, method and code.",
}, []string{"path", "method", "code"})

// chunksPublishedTotal counts route chunks handed to the queue by the orchestrator.
var chunksPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "smartgo_chunks_published_total",
	Help: "Total number of route chunks published to the forecast queue.",
})

// chunksProcessedTotal counts chunk outcomes on the worker side.
var chunksProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "smartgo_chunks_processed_total",
	Help: "Total number of route chunks consumed, by outcome.",
}, []string{"outcome"})

// routeForecastFailuresTotal counts routes skipped by the worker because
// forecast computation failed for them.
var routeForecastFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "smartgo_route_forecast_failures_total",
	Help: "Total number of routes whose forecast computation failed.",
})

// scrapeRunsTotal counts scraper runs, partitioned by provider and outcome.
var scrapeRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "smartgo_scrape_runs_total",
	Help: "Total number of per-city scrape runs, by provider and outcome.",
}, []string{"provider", "outcome"})
