package postgresengine

import (
	"time"

	"github.com/AntonStoeckl/softdelete-go/safedelete"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithConfig replaces the default safedelete.Config (deleted-marker field, visibility field,
// default visibility, delete policy). The config is validated.
func WithConfig(cfg safedelete.Config) Option {
	return func(s *Store) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		s.config = cfg

		return nil
	}
}

// WithColumns sets the columns the query factories select.
// Defaults to "id" and the deleted-marker field.
func WithColumns(columns ...string) Option {
	return func(s *Store) error {
		if len(columns) == 0 {
			return safedelete.ErrEmptyColumns
		}

		s.columns = append([]string(nil), columns...)

		return nil
	}
}

// WithDeletePolicy overrides the delete policy of the configured safedelete.Config.
func WithDeletePolicy(policy safedelete.DeletePolicy) Option {
	return func(s *Store) error {
		if !policy.IsValid() {
			return safedelete.ErrInvalidDeletePolicy
		}

		s.config.DeletePolicy = policy

		return nil
	}
}

// WithClock sets the time source used to stamp the deleted marker.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) error {
		if clock == nil {
			return safedelete.ErrNilClock
		}

		s.clock = clock

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: row counts, durations, visibility modes (production-safe)
// Warn level: non-critical issues like cleanup failures and refused deletes
// Error level: failures that make an operation fail.
func WithLogger(logger safedelete.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger for the Store.
// It receives the same messages as the Logger, together with the operation's context.
func WithContextualLogger(logger safedelete.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives operation durations, rows affected, and database error counts.
func WithMetrics(collector safedelete.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every operation gets a span carrying the visibility mode, row counts and error types.
func WithTracing(collector safedelete.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
