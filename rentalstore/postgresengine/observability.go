package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

const (
	metricOperationDuration    = "rentalstore_operation_duration_seconds"
	metricRecordsRead          = "rentalstore_records_read"
	metricDatabaseErrors       = "rentalstore_database_errors_total"
	metricConcurrencyConflicts = "rentalstore_concurrency_conflicts_total"

	spanNamePrefix      = "rentalstore."
	spanAttrOperation   = "operation"
	spanAttrErrorType   = "error_type"
	spanAttrRecordCount = "record_count"
	spanAttrDurationMS  = "duration_ms"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeCanceled            = "canceled"
	errorTypeTimeout             = "timeout"
	errorTypeNotFound            = "not_found"
	errorTypeConcurrencyConflict = "concurrency_conflict"
	errorTypeDuplicateRecord     = "duplicate_record"
	errorTypeBuildQuery          = "build_query"
	errorTypeDatabase            = "database"
	errorTypeAborted             = "aborted"
)

// classifyError maps an operation error to a low-cardinality error type label.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	case errors.Is(err, rentalstore.ErrNotFound):
		return errorTypeNotFound
	case errors.Is(err, rentalstore.ErrConcurrencyConflict):
		return errorTypeConcurrencyConflict
	case errors.Is(err, rentalstore.ErrDuplicateRecord):
		return errorTypeDuplicateRecord
	case errors.Is(err, rentalstore.ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, rentalstore.ErrQueryingFailed),
		errors.Is(err, rentalstore.ErrExecutingStatementFailed),
		errors.Is(err, rentalstore.ErrScanningDBRowFailed),
		errors.Is(err, rentalstore.ErrConvertingRowFailed),
		errors.Is(err, rentalstore.ErrGettingRowsAffectedFailed),
		errors.Is(err, rentalstore.ErrBeginningTxFailed),
		errors.Is(err, rentalstore.ErrCommittingTxFailed):
		return errorTypeDatabase
	default:
		// the unit of work of a transaction decided to abort
		return errorTypeAborted
	}
}

// === Operation Observer Pattern ===
// One observer per public operation keeps span, metrics, and logging in sync.

type operationObserver struct {
	s         *Store
	ctx       context.Context
	span      rentalstore.SpanContext
	operation string
	start     time.Time
}

// startOperation starts the span for an operation and returns the span's context.
func (s *Store) startOperation(ctx context.Context, operation string) (*operationObserver, context.Context) {
	newCtx := ctx

	var span rentalstore.SpanContext
	if s.tracingCollector != nil {
		newCtx, span = s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
			spanAttrOperation: operation,
		})
	}

	return &operationObserver{
		s:         s,
		ctx:       newCtx,
		span:      span,
		operation: operation,
		start:     time.Now(),
	}, newCtx
}

// finish records the outcome. A negative recordCount means the operation does not read records.
func (o *operationObserver) finish(err error, recordCount int) {
	if err != nil {
		o.finishError(err)
		return
	}

	o.finishSuccess(recordCount)
}

func (o *operationObserver) finishSuccess(recordCount int) {
	duration := time.Since(o.start)
	attrs := map[string]string{
		spanAttrDurationMS: fmt.Sprintf("%.2f", durationToMilliseconds(duration)),
	}

	if recordCount >= 0 {
		attrs[spanAttrRecordCount] = fmt.Sprintf("%d", recordCount)
		o.s.recordValueMetrics(o.ctx, metricRecordsRead, float64(recordCount), o.operation, statusSuccess)
	}

	o.s.recordDurationMetrics(o.ctx, duration, o.operation, statusSuccess)
	o.s.finishTraceSpan(o.span, statusSuccess, attrs)

	o.s.logOperation(o.ctx, o.operation,
		logAttrRecordCount, max(recordCount, 0),
		logAttrDurationMS, durationToMilliseconds(duration))
}

func (o *operationObserver) finishError(err error) {
	duration := time.Since(o.start)
	errorType := classifyError(err)

	o.s.recordDurationMetrics(o.ctx, duration, o.operation, statusError)
	o.s.finishTraceSpan(o.span, statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: fmt.Sprintf("%.2f", durationToMilliseconds(duration)),
	})

	switch errorType {
	case errorTypeDatabase, errorTypeBuildQuery:
		o.s.recordErrorMetrics(o.ctx, o.operation, errorType)
		o.s.logError(o.ctx, logMsgOperationFailed+o.operation, err, logAttrErrorType, errorType)
	case errorTypeConcurrencyConflict:
		o.s.recordConcurrencyConflictMetrics(o.ctx, o.operation)
		o.s.logOperation(o.ctx, o.operation, logAttrErrorType, errorType)
	default:
		o.s.logOperation(o.ctx, o.operation, logAttrErrorType, errorType)
	}
}

// === Metrics ===

func (s *Store) recordDurationMetrics(ctx context.Context, duration time.Duration, operation, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, "status": status}

	if contextualCollector, ok := s.metricsCollector.(rentalstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
}

func (s *Store) recordValueMetrics(ctx context.Context, metric string, value float64, operation, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, "status": status}

	if contextualCollector, ok := s.metricsCollector.(rentalstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metric, value, labels)
}

func (s *Store) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(rentalstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

func (s *Store) recordConcurrencyConflictMetrics(ctx context.Context, operation string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"conflict_type":   "concurrency",
	}

	if contextualCollector, ok := s.metricsCollector.(rentalstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricConcurrencyConflicts, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
}

// === Tracing ===

func (s *Store) finishTraceSpan(span rentalstore.SpanContext, status string, attrs map[string]string) {
	if s.tracingCollector != nil && span != nil {
		s.tracingCollector.FinishSpan(span, status, attrs)
	}
}

// === Logging ===
// The contextual logger wins when both are configured, it adds trace correlation.

func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	case s.logger != nil:
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case s.logger != nil:
		s.logger.Info(logMsgOperation+action, args...)
	}
}

func (s *Store) logWarn(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.WarnContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Warn(message, allArgs...)
	}
}

func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Error(message, allArgs...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
