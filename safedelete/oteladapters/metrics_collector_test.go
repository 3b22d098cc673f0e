package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/softdelete-go/safedelete/oteladapters"
)

func givenMetricsCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	collector, reader := givenMetricsCollector()

	collector.RecordDuration(
		"softdelete_operation_duration_seconds",
		150*time.Millisecond,
		map[string]string{"operation": "fetch", "status": "success"},
	)

	histogram := findHistogramMetric(t, collect(t, reader), "softdelete_operation_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)

	expectedAttrs := attribute.NewSet(
		attribute.String("operation", "fetch"),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	collector, reader := givenMetricsCollector()
	labels := map[string]string{"operation": "soft_delete", "status": "success"}

	collector.IncrementCounter("softdelete_operations_total", labels)
	collector.IncrementCounterContext(context.Background(), "softdelete_operations_total", labels)
	collector.IncrementCounter("softdelete_operations_total", labels)

	counter := findCounterMetric(t, collect(t, reader), "softdelete_operations_total")
	require.Len(t, counter.DataPoints, 1)

	assert.Equal(t, int64(3), counter.DataPoints[0].Value)
	assert.True(t, counter.IsMonotonic)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	collector, reader := givenMetricsCollector()

	collector.RecordValue("softdelete_rows", 4, map[string]string{"operation": "undelete"})
	collector.RecordValueContext(context.Background(), "softdelete_rows", 6, map[string]string{"operation": "undelete"})

	histogram := findHistogramMetric(t, collect(t, reader), "softdelete_rows")
	require.Len(t, histogram.DataPoints, 1)

	assert.Equal(t, uint64(2), histogram.DataPoints[0].Count)
	assert.InDelta(t, 10.0, histogram.DataPoints[0].Sum, 0.0001)
}

func Test_MetricsCollector_Separates_Label_Sets(t *testing.T) {
	collector, reader := givenMetricsCollector()

	collector.IncrementCounter("softdelete_errors_total", map[string]string{"error_type": "database_exec"})
	collector.IncrementCounter("softdelete_errors_total", map[string]string{"error_type": "limited_query"})

	counter := findCounterMetric(t, collect(t, reader), "softdelete_errors_total")

	assert.Len(t, counter.DataPoints, 2)
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Histogram[float64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if h, ok := m.Data.(metricdata.Histogram[float64]); ok && m.Name == name {
				return &h
			}
		}
	}

	t.Fatalf("histogram metric %s not found", name)

	return nil
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Sum[int64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if c, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == name {
				return &c
			}
		}
	}

	t.Fatalf("counter metric %s not found", name)

	return nil
}
