package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/softdelete-go/safedelete/oteladapters"
)

func givenTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func Test_TracingCollector_StartSpan_And_FinishSpan(t *testing.T) {
	collector, exporter := givenTracingCollector()

	ctx, spanCtx := collector.StartSpan(context.Background(), "softdelete.fetch", map[string]string{
		"operation":  "fetch",
		"table":      "books",
		"visibility": "invisible",
	})
	spanCtx.AddAttribute("duration_ms", "1.25")
	collector.FinishSpan(spanCtx, "success", map[string]string{"rows": "3"})

	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "softdelete.fetch", span.Name)
	assert.Equal(t, trace.SpanKindClient, span.SpanKind)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertSpanHasAttribute(t, span, "visibility", "invisible")
	assertSpanHasAttribute(t, span, "duration_ms", "1.25")
	assertSpanHasAttribute(t, span, "rows", "3")
}

func Test_TracingCollector_FinishSpan_With_Error(t *testing.T) {
	collector, exporter := givenTracingCollector()

	_, spanCtx := collector.StartSpan(context.Background(), "softdelete.undelete", nil)
	collector.FinishSpan(spanCtx, "error", map[string]string{"error_type": "invisible_query"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "error_type", "invisible_query")
}

func Test_TracingCollector_Keeps_Unknown_Status_As_Attribute(t *testing.T) {
	collector, exporter := givenTracingCollector()

	_, spanCtx := collector.StartSpan(context.Background(), "softdelete.count", nil)
	collector.FinishSpan(spanCtx, "skipped", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "status", "skipped")
}

func Test_TracingCollector_Ignores_Foreign_Span_Contexts(t *testing.T) {
	collector, exporter := givenTracingCollector()

	assert.NotPanics(t, func() {
		collector.FinishSpan(nil, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) && attr.Value.AsString() == expectedValue {
			return
		}
	}

	assert.Failf(t, "missing span attribute", "span should have attribute %s=%s", key, expectedValue)
}
