package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration (OpenTelemetry-compatible).
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"

	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	// CommandHandlerIdempotentMetric tracks idempotent operations.
	CommandHandlerIdempotentMetric = "commandhandler_idempotent_operations_total"

	// CommandHandlerCanceledMetric tracks canceled operations.
	CommandHandlerCanceledMetric = "commandhandler_canceled_operations_total"

	// CommandHandlerTimeoutMetric tracks timeout operations.
	CommandHandlerTimeoutMetric = "commandhandler_timeout_operations_total"

	// CommandHandlerConcurrencyConflictMetric tracks operations that lost a race on a guarded update.
	CommandHandlerConcurrencyConflictMetric = "commandhandler_concurrency_conflicts_total"

	// CommandHandlerRejectedMetric tracks commands rejected by a business rule or validation.
	CommandHandlerRejectedMetric = "commandhandler_rejected_operations_total"

	// QueryHandlerDurationMetric tracks query handler execution duration (OpenTelemetry-compatible).
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"

	// QueryHandlerCallsMetric tracks total query handler calls.
	QueryHandlerCallsMetric = "queryhandler_handle_calls_total"

	// QueryHandlerCanceledMetric tracks canceled query operations.
	QueryHandlerCanceledMetric = "queryhandler_canceled_operations_total"

	// QueryHandlerTimeoutMetric tracks timeout query operations.
	QueryHandlerTimeoutMetric = "queryhandler_timeout_operations_total"

	// StatusSuccess indicates successful completion.
	StatusSuccess = "success"

	// StatusError indicates a processing error.
	StatusError = "error"

	// StatusIdempotent indicates no state change was needed.
	StatusIdempotent = "idempotent"

	// StatusRejected indicates a validation failure or a business rule violation.
	StatusRejected = "rejected"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates a guarded update found the row already changed.
	StatusConcurrencyConflict = "concurrency_conflict"

	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandRejected  = "command handler rejected the command"
	LogMsgCommandFailed    = "command handler failed"
	LogMsgQueryStarted     = "query handler started"
	LogMsgQueryCompleted   = "query handler completed"
	LogMsgQueryFailed      = "query handler failed"

	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrError           = "error"

	// SpanNameCommandHandle is the tracing span name for command handling.
	SpanNameCommandHandle = "commandhandler.handle"

	// SpanNameQueryHandle is the tracing span name for query handling.
	SpanNameQueryHandle = "queryhandler.handle"
)

// Interface aliases for convenience when using handler observability.
// These match the rentalstore observability interfaces, so one set of adapters serves both.

// MetricsCollector interface for collecting handler performance metrics.
type MetricsCollector = rentalstore.MetricsCollector

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
type ContextualMetricsCollector = rentalstore.ContextualMetricsCollector

// TracingCollector interface for distributed tracing in handlers.
type TracingCollector = rentalstore.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = rentalstore.SpanContext

// ContextualLogger interface for context-aware logging in handlers.
type ContextualLogger = rentalstore.ContextualLogger

// Logger interface for basic logging in handlers.
type Logger = rentalstore.Logger

// BuildCommandLabels creates standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates standard metric labels for query handler operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// ClassifyError maps an error to the status used in metrics, spans and logs.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	case IsRejectionError(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// RecordCommandMetrics records all relevant metrics for a command operation.
// It handles both context-aware and basic metrics collectors automatically.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)

	switch status {
	case StatusIdempotent:
		incrementCounter(ctx, collector, CommandHandlerIdempotentMetric, BuildCommandLabels(commandType, status))
	case StatusCanceled:
		incrementCounter(ctx, collector, CommandHandlerCanceledMetric, BuildCommandLabels(commandType, status))
	case StatusTimeout:
		incrementCounter(ctx, collector, CommandHandlerTimeoutMetric, BuildCommandLabels(commandType, status))
	case StatusConcurrencyConflict:
		incrementCounter(ctx, collector, CommandHandlerConcurrencyConflictMetric, BuildCommandLabels(commandType, status))
	case StatusRejected:
		incrementCounter(ctx, collector, CommandHandlerRejectedMetric, BuildCommandLabels(commandType, status))
	}
}

// RecordQueryMetrics records all relevant metrics for a query operation.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, QueryHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, QueryHandlerCallsMetric, labels)

	switch status {
	case StatusCanceled:
		incrementCounter(ctx, collector, QueryHandlerCanceledMetric, BuildQueryLabels(queryType, status))
	case StatusTimeout:
		incrementCounter(ctx, collector, QueryHandlerTimeoutMetric, BuildQueryLabels(queryType, status))
	}
}

// StartCommandSpan starts a distributed tracing span for command operations.
// Returns the original context and nil if tracing is disabled.
func StartCommandSpan(ctx context.Context, tracingCollector TracingCollector, commandType string) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameCommandHandle, map[string]string{LogAttrCommandType: commandType})
}

// StartQuerySpan starts a distributed tracing span for query operations.
// Returns the original context and nil if tracing is disabled.
func StartQuerySpan(ctx context.Context, tracingCollector TracingCollector, queryType string) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameQueryHandle, map[string]string{LogAttrQueryType: queryType})
}

// FinishSpan completes a distributed tracing span with the operation outcome.
func FinishSpan(tracingCollector TracingCollector, span SpanContext, status string, duration time.Duration, err error) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: formatDurationMS(duration),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogStart logs the beginning of command or query processing.
func LogStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

// LogSuccess logs successful completion with the business outcome and duration.
func LogSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	msg string,
	typeAttr string,
	handlerType string,
	businessOutcome string,
	duration time.Duration,
) {
	args := []any{
		typeAttr, handlerType,
		LogAttrBusinessOutcome, businessOutcome,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

// LogFailure logs a failed operation. Rejections are expected outcomes and logged at warn level.
func LogFailure(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	msg string,
	typeAttr string,
	handlerType string,
	status string,
	err error,
) {
	args := []any{
		typeAttr, handlerType,
		LogAttrStatus, status,
		LogAttrError, err.Error(),
	}

	if status == StatusRejected {
		if contextualLogger != nil {
			contextualLogger.WarnContext(ctx, msg, args...)
		} else if logger != nil {
			logger.Warn(msg, args...)
		}

		return
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Error(msg, args...)
	}
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if a guarded update found the row already changed.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, rentalstore.ErrConcurrencyConflict)
}

// IsRejectionError checks if an error is an expected refusal rather than a failure.
func IsRejectionError(err error) bool {
	return errors.Is(err, core.ErrValidation) ||
		errors.Is(err, core.ErrBusinessRuleViolation) ||
		errors.Is(err, core.ErrNotFound)
}

func recordDuration(ctx context.Context, collector MetricsCollector, metric string, d time.Duration, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	collector.RecordDuration(metric, d, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// formatDurationMS formats duration in milliseconds for span attributes.
func formatDurationMS(duration time.Duration) string {
	return fmt.Sprintf("%.2f", ToMilliseconds(duration))
}
