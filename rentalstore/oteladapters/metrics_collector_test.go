package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/book-rental-go/rentalstore/oteladapters"
)

func newCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
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

func findMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	require.Failf(t, "metric not found", "metric %s was not recorded", name)

	return metricdata.Metrics{}
}

func Test_MetricsCollector_RecordDuration_RecordsSecondsInHistogram(t *testing.T) {
	// arrange
	collector, reader := newCollector()
	labels := map[string]string{"command_type": "BorrowBook", "status": "success"}

	// act
	collector.RecordDurationContext(context.Background(), "commandhandler_handle_duration_seconds", 250*time.Millisecond, labels)

	// assert
	histogram, ok := findMetric(t, collect(t, reader), "commandhandler_handle_duration_seconds").Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.25, histogram.DataPoints[0].Sum, 0.001)

	expected := attribute.NewSet(attribute.String("command_type", "BorrowBook"), attribute.String("status", "success"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expected))
}

func Test_MetricsCollector_IncrementCounter_ReusesInstrument(t *testing.T) {
	// arrange
	collector, reader := newCollector()
	labels := map[string]string{"operation": "run_in_tx"}

	// act
	collector.IncrementCounter("rentalstore_concurrency_conflicts_total", labels)
	collector.IncrementCounterContext(context.Background(), "rentalstore_concurrency_conflicts_total", labels)

	// assert
	sum, ok := findMetric(t, collect(t, reader), "rentalstore_concurrency_conflicts_total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue_KeepsLastValue(t *testing.T) {
	// arrange
	collector, reader := newCollector()

	// act
	collector.RecordValue("overdue_borrowings", 4, nil)
	collector.RecordValue("overdue_borrowings", 2, nil)

	// assert
	gauge, ok := findMetric(t, collect(t, reader), "overdue_borrowings").Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 2.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_NilMeterIsANoop(t *testing.T) {
	// arrange
	collector := oteladapters.NewMetricsCollector(nil)

	// act / assert
	assert.NotPanics(t, func() {
		collector.RecordDuration("d", time.Second, nil)
		collector.IncrementCounter("c", nil)
		collector.RecordValue("v", 1, nil)
	})
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	// arrange
	collector, reader := newCollector()
	var wg sync.WaitGroup

	// act
	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			collector.IncrementCounter("parallel_total", map[string]string{"k": "v"})
		}()
	}

	wg.Wait()

	// assert
	sum, ok := findMetric(t, collect(t, reader), "parallel_total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(20), sum.DataPoints[0].Value)
}
