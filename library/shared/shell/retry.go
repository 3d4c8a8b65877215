package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"
)

const (
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 100 * time.Millisecond
	defaultJitterFactor = 0.3

	// RetriesMetric tracks retry attempts, labelled by operation, attempt_number and error_type.
	RetriesMetric = "retries_total"

	// RetryDelayMetric tracks the backoff delays before retries.
	RetryDelayMetric = "retry_delay_seconds"

	// MaxRetriesReachedMetric tracks operations that failed after the last attempt.
	MaxRetriesReachedMetric = "max_retries_reached_total"

	labelOperation      = "operation"
	labelAttemptNumber  = "attempt_number"
	labelErrorType      = "error_type"
	labelFinalErrorType = "final_error_type"
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithRetryMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyOperation is returned when an empty operation name is provided to WithRetryMetrics.
	ErrEmptyOperation = errors.New("operation must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrNilRetryPredicate is returned when a nil predicate is provided to WithRetryableErrors.
	ErrNilRetryPredicate = errors.New("retry predicate must not be nil")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes how a retried execution went.
type RetryMetrics struct {
	// Attempts is the total number of attempts made (1 for no retries).
	Attempts int

	// TotalDelay is the cumulative time spent in backoff delays.
	TotalDelay time.Duration

	// LastErrorType describes the final error: "none", "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is true when all attempts failed with a retryable error.
	RetriesExhausted bool
}

// retryConfig holds configuration for exponential backoff retry logic.
type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	isRetryable      func(error) bool
	metricsCollector MetricsCollector
	operation        string
}

// RetryWithExponentialBackoff executes fn and retries it on retryable errors with exponential backoff.
//
// Retry Schedule (default): 0 ms, 100 ms, 200 ms (with 30% jitter).
// Use Case: delivery to external notification sinks, which may fail transiently.
//
// By default, every error except context cancellation and deadline is retryable.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetrics, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
		isRetryable:  isTransientError,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetrics{}, err
		}
	}

	metrics := RetryMetrics{LastErrorType: getErrorType(nil)}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec //math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			recordRetryDelayMetric(ctx, config, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
				metrics.TotalDelay += backoffDelay
			case <-ctx.Done():
				metrics.LastErrorType = getErrorType(ctx.Err())
				return metrics, ctx.Err()
			}
		}

		metrics.Attempts++

		lastErr = fn(ctx)
		metrics.LastErrorType = getErrorType(lastErr)

		if lastErr == nil {
			return metrics, nil
		}

		if !config.isRetryable(lastErr) {
			return metrics, lastErr
		}

		recordRetryAttemptMetric(ctx, attempt, config, lastErr)
	}

	metrics.RetriesExhausted = true
	recordMaxRetriesReachedMetric(ctx, config, lastErr)

	return metrics, lastErr
}

func recordRetryDelayMetric(ctx context.Context, config *retryConfig, attempt int, backoffDelay time.Duration) {
	if config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:     config.operation,
		labelAttemptNumber: strconv.Itoa(attempt),
	}

	recordDuration(ctx, config.metricsCollector, RetryDelayMetric, backoffDelay, labels)
}

func recordRetryAttemptMetric(ctx context.Context, attempt int, config *retryConfig, lastErr error) {
	if attempt >= config.maxAttempts-1 || config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:     config.operation,
		labelAttemptNumber: strconv.Itoa(attempt + 1),
		labelErrorType:     getErrorType(lastErr),
	}

	incrementCounter(ctx, config.metricsCollector, RetriesMetric, labels)
}

func recordMaxRetriesReachedMetric(ctx context.Context, config *retryConfig, lastErr error) {
	if config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:      config.operation,
		labelFinalErrorType: getErrorType(lastErr),
	}

	incrementCounter(ctx, config.metricsCollector, MaxRetriesReachedMetric, labels)
}

// isTransientError retries everything except a canceled or expired context.
func isTransientError(err error) bool {
	return !IsCancellationError(err) && !IsTimeoutError(err)
}

// getErrorType extracts a string representation of the error type for metrics labeling.
func getErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsCancellationError(err):
		return "context_canceled"
	case IsTimeoutError(err):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithRetryableErrors replaces the predicate deciding which errors are retried.
func WithRetryableErrors(isRetryable func(error) bool) RetryOption {
	return func(config *retryConfig) error {
		if isRetryable == nil {
			return ErrNilRetryPredicate
		}

		config.isRetryable = isRetryable

		return nil
	}
}

// WithRetryMetrics sets the metrics collector for retry instrumentation, labelled with the operation.
func WithRetryMetrics(collector MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if operation == "" {
			return ErrEmptyOperation
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}
