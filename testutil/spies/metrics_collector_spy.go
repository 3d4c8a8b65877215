package spies

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// MetricRecord is one captured metrics call. Duration is set for duration records, Value for value records.
type MetricRecord struct {
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsCollectorSpy captures all metrics calls. It implements both the plain and the
// context-aware metrics collector interfaces.
type MetricsCollectorSpy struct {
	mu        sync.Mutex
	durations []MetricRecord
	counters  []MetricRecord
	values    []MetricRecord
}

// NewMetricsCollectorSpy creates an empty MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durations = append(s.durations, MetricRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = append(s.counters, MetricRecord{Metric: metric, Value: 1, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = append(s.values, MetricRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

// DurationRecords returns a copy of the captured duration records.
func (s *MetricsCollectorSpy) DurationRecords() []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]MetricRecord(nil), s.durations...)
}

// CounterRecords returns a copy of the captured counter records.
func (s *MetricsCollectorSpy) CounterRecords() []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]MetricRecord(nil), s.counters...)
}

// ValueRecords returns a copy of the captured value records.
func (s *MetricsCollectorSpy) ValueRecords() []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]MetricRecord(nil), s.values...)
}

// HasDurationRecord reports whether a duration was recorded for metric with all of the given labels.
func (s *MetricsCollectorSpy) HasDurationRecord(metric string, labels map[string]string) bool {
	return hasRecord(s.DurationRecords(), metric, labels)
}

// HasCounterRecord reports whether a counter was incremented for metric with all of the given labels.
func (s *MetricsCollectorSpy) HasCounterRecord(metric string, labels map[string]string) bool {
	return hasRecord(s.CounterRecords(), metric, labels)
}

// HasValueRecord reports whether a value was recorded for metric with all of the given labels.
func (s *MetricsCollectorSpy) HasValueRecord(metric string, labels map[string]string) bool {
	return hasRecord(s.ValueRecords(), metric, labels)
}

// Reset clears all captured records.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durations, s.counters, s.values = nil, nil, nil
}

func hasRecord(records []MetricRecord, metric string, labels map[string]string) bool {
	for _, record := range records {
		if record.Metric == metric && containsLabels(record.Labels, labels) {
			return true
		}
	}

	return false
}

func containsLabels(actual, expected map[string]string) bool {
	for key, value := range expected {
		if actual[key] != value {
			return false
		}
	}

	return true
}

var _ rentalstore.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)
