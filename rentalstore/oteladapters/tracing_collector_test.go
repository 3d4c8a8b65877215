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

	"github.com/AntonStoeckl/book-rental-go/rentalstore/oteladapters"
)

func newTracing() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func attributeValue(span tracetest.SpanStub, key string) (string, bool) {
	for _, kv := range span.Attributes {
		if kv.Key == attribute.Key(key) {
			return kv.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	collector, exporter := newTracing()

	// act
	_, span := collector.StartSpan(context.Background(), "BorrowBook", map[string]string{"command_type": "BorrowBook"})
	collector.FinishSpan(span, "success", map[string]string{"idempotent": "false"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "BorrowBook", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	value, found := attributeValue(spans[0], "command_type")
	assert.True(t, found)
	assert.Equal(t, "BorrowBook", value)

	value, found = attributeValue(spans[0], "idempotent")
	assert.True(t, found)
	assert.Equal(t, "false", value)
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status   string
		expected codes.Code
	}{
		{status: "success", expected: codes.Ok},
		{status: "idempotent", expected: codes.Ok},
		{status: "error", expected: codes.Error},
		{status: "canceled", expected: codes.Error},
		{status: "timeout", expected: codes.Error},
		{status: "concurrency_conflict", expected: codes.Error},
		{status: "something_else", expected: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := newTracing()
			_, span := collector.StartSpan(context.Background(), "op", nil)

			// act
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expected, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_PropagatesParentSpan(t *testing.T) {
	// arrange
	collector, exporter := newTracing()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "parent", nil)
	_, child := collector.StartSpan(ctx, "child", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, trace.SpanContextFromContext(ctx).TraceID(), spans[0].SpanContext.TraceID())
}

func Test_TracingCollector_NilTracerAndForeignSpansAreIgnored(t *testing.T) {
	// arrange
	collector := oteladapters.NewTracingCollector(nil)
	ctx := context.Background()

	// act
	newCtx, span := collector.StartSpan(ctx, "op", nil)

	// assert
	assert.Equal(t, ctx, newCtx)
	assert.Nil(t, span)
	assert.NotPanics(t, func() { collector.FinishSpan(span, "success", nil) })
}
