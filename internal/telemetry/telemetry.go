// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry instruments the ingestion and aggregation engine with
// OTel metrics: cache hit/miss rates, lazy-recompute counts, reentry
// trips, and per-outcome record counts.
package telemetry // import "github.com/kevleyski/traceprof/internal/telemetry"

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	intlog "github.com/kevleyski/traceprof/internal/log"
)

var (
	meter = otel.Meter("github.com/kevleyski/traceprof")

	ensureCleanRecomputes metric.Int64Counter
	traceCacheHits        metric.Int64Counter
	traceCacheMisses      metric.Int64Counter
	reentryTrips          metric.Int64Counter
	recordsIngested       metric.Int64Counter
)

func init() {
	var err error

	ensureCleanRecomputes, err = meter.Int64Counter("traceprof.aggregate.recomputes",
		metric.WithDescription("Lazy global-aggregate recomputations performed by EnsureClean"),
		metric.WithUnit("{recompute}"))
	if err != nil {
		intlog.Errorf("creating recomputes counter: %v", err)
	}

	traceCacheHits, err = meter.Int64Counter("traceprof.query.cache_hits",
		metric.WithDescription("Repeated-query cache hits"),
		metric.WithUnit("{hit}"))
	if err != nil {
		intlog.Errorf("creating cache hits counter: %v", err)
	}

	traceCacheMisses, err = meter.Int64Counter("traceprof.query.cache_misses",
		metric.WithDescription("Repeated-query cache misses"),
		metric.WithUnit("{miss}"))
	if err != nil {
		intlog.Errorf("creating cache misses counter: %v", err)
	}

	reentryTrips, err = meter.Int64Counter("traceprof.activation.reentry_trips",
		metric.WithDescription("Reentrant search calls rejected during function-cycle update"),
		metric.WithUnit("{trip}"))
	if err != nil {
		intlog.Errorf("creating reentry trips counter: %v", err)
	}

	recordsIngested, err = meter.Int64Counter("traceprof.ingest.records",
		metric.WithDescription("Part-file records ingested, by outcome"),
		metric.WithUnit("{record}"))
	if err != nil {
		intlog.Errorf("creating records ingested counter: %v", err)
	}
}

// RecordRecompute notes that a global aggregate had to recompute itself.
func RecordRecompute(ctx context.Context, kind string) {
	if ensureCleanRecomputes == nil {
		return
	}
	ensureCleanRecomputes.Add(ctx, 1, metric.WithAttributes(attrKind(kind)))
}

// RecordCacheHit notes a trace-query cache hit.
func RecordCacheHit(ctx context.Context) {
	if traceCacheHits == nil {
		return
	}
	traceCacheHits.Add(ctx, 1)
}

// RecordCacheMiss notes a trace-query cache miss.
func RecordCacheMiss(ctx context.Context) {
	if traceCacheMisses == nil {
		return
	}
	traceCacheMisses.Add(ctx, 1)
}

// RecordReentryTrip notes a rejected reentrant call into the engine.
func RecordReentryTrip(ctx context.Context, where string) {
	if reentryTrips == nil {
		return
	}
	reentryTrips.Add(ctx, 1, metric.WithAttributes(attrKind(where)))
}

// RecordIngest notes one part-file record ingested with the given
// outcome ("ok", "malformed", "unknown_metric", ...).
func RecordIngest(ctx context.Context, outcome string) {
	if recordsIngested == nil {
		return
	}
	recordsIngested.Add(ctx, 1, metric.WithAttributes(attrOutcome(outcome)))
}
