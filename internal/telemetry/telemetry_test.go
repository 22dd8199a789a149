// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// TestInstrumentsEmitThroughGlobalMeterProvider verifies that the
// package-level instruments (created once, against whatever
// MeterProvider is globally installed at init time) actually forward
// measurements once a real MeterProvider is installed later — the
// same lazy-binding behavior the teacher relies on when it wires
// go.opentelemetry.io/otel's global meter into its metrics package.
func TestInstrumentsEmitThroughGlobalMeterProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	ctx := context.Background()
	RecordRecompute(ctx, "function")
	RecordIngest(ctx, "ok")
	RecordCacheHit(ctx)
	RecordCacheMiss(ctx)
	RecordReentryTrip(ctx, "search")

	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &data))

	names := map[string]bool{}
	for _, sm := range data.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["traceprof.aggregate.recomputes"])
	assert.True(t, names["traceprof.ingest.records"])
	assert.True(t, names["traceprof.query.cache_hits"])
	assert.True(t, names["traceprof.query.cache_misses"])
	assert.True(t, names["traceprof.activation.reentry_trips"])
}
