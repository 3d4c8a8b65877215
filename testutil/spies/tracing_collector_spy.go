package spies

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// SpanRecord is a captured span. Status and Attrs are complete once the span was finished.
type SpanRecord struct {
	Name     string
	Status   string
	Attrs    map[string]string
	Finished bool
}

// SpySpanContext is the span handle returned by TracingCollectorSpy.
type SpySpanContext struct {
	spy   *TracingCollectorSpy
	index int
}

func (c *SpySpanContext) SetStatus(status string) {
	c.spy.mu.Lock()
	defer c.spy.mu.Unlock()

	c.spy.spans[c.index].Status = status
}

func (c *SpySpanContext) AddAttribute(key, value string) {
	c.spy.mu.Lock()
	defer c.spy.mu.Unlock()

	c.spy.spans[c.index].Attrs[key] = value
}

// TracingCollectorSpy records started and finished spans. It implements rentalstore.TracingCollector.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []SpanRecord
}

// NewTracingCollectorSpy creates an empty TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan records a new span and returns its handle.
func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, rentalstore.SpanContext) {

	s.mu.Lock()
	defer s.mu.Unlock()

	recorded := maps.Clone(attrs)
	if recorded == nil {
		recorded = make(map[string]string)
	}

	s.spans = append(s.spans, SpanRecord{Name: name, Attrs: recorded})

	return ctx, &SpySpanContext{spy: s, index: len(s.spans) - 1}
}

// FinishSpan marks a span as finished with status and additional attributes.
func (s *TracingCollectorSpy) FinishSpan(spanCtx rentalstore.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &s.spans[span.index]
	record.Status = status
	record.Finished = true
	maps.Copy(record.Attrs, attrs)
}

// Spans returns a copy of all recorded spans.
func (s *TracingCollectorSpy) Spans() []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpanRecord, 0, len(s.spans))
	for _, span := range s.spans {
		span.Attrs = maps.Clone(span.Attrs)
		spans = append(spans, span)
	}

	return spans
}

// SpanByName returns the first recorded span with name.
func (s *TracingCollectorSpy) SpanByName(name string) (SpanRecord, bool) {
	for _, span := range s.Spans() {
		if span.Name == name {
			return span, true
		}
	}

	return SpanRecord{}, false
}

var _ rentalstore.TracingCollector = (*TracingCollectorSpy)(nil)
