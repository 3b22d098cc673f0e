package helper

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/AntonStoeckl/softdelete-go/safedelete"
)

// SpyMetricRecord represents one recorded metrics call.
// Duration is set for duration records, Value for value records.
type SpyMetricRecord struct {
	Kind       string
	Metric     string
	Duration   time.Duration
	Value      float64
	Labels     map[string]string
	HasContext bool
}

const (
	SpyKindDuration = "duration"
	SpyKindCounter  = "counter"
	SpyKindValue    = "value"
)

// MetricsCollectorSpy captures metrics calls for testing.
// It implements safedelete.ContextualMetricsCollector, so stores use the context-aware methods.
type MetricsCollectorSpy struct {
	records []SpyMetricRecord
	mu      sync.Mutex
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{records: make([]SpyMetricRecord, 0)}
}

func (s *MetricsCollectorSpy) add(record SpyMetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.Labels = maps.Clone(record.Labels)
	s.records = append(s.records, record)
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyKindDuration, Metric: metric, Duration: duration, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyKindCounter, Metric: metric, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyKindValue, Metric: metric, Value: value, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyKindDuration, Metric: metric, Duration: duration, Labels: labels, HasContext: true})
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyKindCounter, Metric: metric, Labels: labels, HasContext: true})
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyKindValue, Metric: metric, Value: value, Labels: labels, HasContext: true})
}

// Records returns a copy of all captured records.
func (s *MetricsCollectorSpy) Records() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyMetricRecord, len(s.records))
	copy(records, s.records)

	return records
}

// Find returns the first record of the given kind and metric whose labels contain all of the given labels.
func (s *MetricsCollectorSpy) Find(kind, metric string, labels map[string]string) (SpyMetricRecord, bool) {
	for _, record := range s.Records() {
		if record.Kind != kind || record.Metric != metric {
			continue
		}

		matches := true
		for key, value := range labels {
			if record.Labels[key] != value {
				matches = false
				break
			}
		}

		if matches {
			return record, true
		}
	}

	return SpyMetricRecord{}, false
}

var _ safedelete.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)
