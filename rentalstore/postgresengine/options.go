package postgresengine

import (
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithBooksTableName sets the books table name.
func WithBooksTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return rentalstore.ErrEmptyTableNameSupplied
		}

		s.booksTable = tableName

		return nil
	}
}

// WithBorrowingsTableName sets the borrowings table name.
func WithBorrowingsTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return rentalstore.ErrEmptyTableNameSupplied
		}

		s.borrowingsTable = tableName

		return nil
	}
}

// WithPaymentsTableName sets the payments table name.
func WithPaymentsTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return rentalstore.ErrEmptyTableNameSupplied
		}

		s.paymentsTable = tableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Record counts, durations, not found and conflict outcomes (production-safe)
// Warn level: Non-critical issues like rollback or cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger rentalstore.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// Log messages then carry trace and span correlation when tracing is enabled.
func WithContextualLogger(logger rentalstore.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives operation durations, record counts, concurrency conflicts, and database errors.
func WithMetrics(collector rentalstore.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every public operation and every transaction gets its own span.
func WithTracing(collector rentalstore.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
