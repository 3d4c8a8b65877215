package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultQueueSize = 64

	NotificationsDeliveredMetric = "notifications_delivered_total"
	NotificationsFailedMetric    = "notifications_failed_total"
	NotificationsDroppedMetric   = "notifications_dropped_total"

	retryOperationPrefix = "notify_"

	dropReasonQueueFull = "queue_full"
	dropReasonClosed    = "closed"

	logMsgDeliveryFailed      = "notification delivery failed"
	logMsgNotificationDropped = "notification dropped"
	logAttrSink               = "sink"
	logAttrAttempts           = "attempts"
	logAttrReason             = "reason"
	logAttrError              = "error"
)

var (
	ErrNonPositiveTimeout   = errors.New("notification timeout must be positive")
	ErrNonPositiveQueueSize = errors.New("notification queue size must be positive")

	// ErrPermanentDelivery marks a sink failure that a retry cannot fix.
	ErrPermanentDelivery = errors.New("permanent delivery failure")
)

type delivery struct {
	ctx     context.Context
	message string
}

// Notifier fans messages out to its sinks on a background goroutine.
type Notifier struct {
	sinks            []Sink
	timeout          time.Duration
	queueSize        int
	retryOptions     []shell.RetryOption
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	metricsCollector shell.MetricsCollector

	mu     sync.Mutex
	closed bool
	queue  chan delivery
	done   chan struct{}
}

// Option configures a Notifier.
type Option func(*Notifier) error

// WithTimeout bounds the delivery to one sink, retries included.
func WithTimeout(timeout time.Duration) Option {
	return func(n *Notifier) error {
		if timeout <= 0 {
			return ErrNonPositiveTimeout
		}

		n.timeout = timeout

		return nil
	}
}

// WithQueueSize sets how many messages may wait for delivery before new ones are dropped.
func WithQueueSize(size int) Option {
	return func(n *Notifier) error {
		if size <= 0 {
			return ErrNonPositiveQueueSize
		}

		n.queueSize = size

		return nil
	}
}

// WithRetryOptions tunes the retry behavior of each delivery.
// With a metrics collector, retry metrics are added per sink under the operation "notify_<sink>".
func WithRetryOptions(options ...shell.RetryOption) Option {
	return func(n *Notifier) error {
		n.retryOptions = options
		return nil
	}
}

func WithLogger(logger shell.Logger) Option {
	return func(n *Notifier) error {
		n.logger = logger
		return nil
	}
}

func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(n *Notifier) error {
		n.contextualLogger = logger
		return nil
	}
}

func WithMetrics(collector shell.MetricsCollector) Option {
	return func(n *Notifier) error {
		n.metricsCollector = collector
		return nil
	}
}

// NewNotifier creates a Notifier delivering to all given sinks and starts its delivery goroutine.
// Close must be called to drain the queue.
func NewNotifier(sinks []Sink, options ...Option) (*Notifier, error) {
	n := &Notifier{
		sinks:     sinks,
		timeout:   defaultTimeout,
		queueSize: defaultQueueSize,
	}

	for _, option := range options {
		if err := option(n); err != nil {
			return nil, err
		}
	}

	n.queue = make(chan delivery, n.queueSize)
	n.done = make(chan struct{})

	go n.run()

	return n, nil
}

// Notify queues message for every sink and returns at once. It does not fail: a full queue drops the message,
// delivery errors are logged and counted. Cancellation of ctx does not abort a delivery.
func (n *Notifier) Notify(ctx context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		n.drop(ctx, dropReasonClosed)
		return
	}

	select {
	case n.queue <- delivery{ctx: context.WithoutCancel(ctx), message: message}:
	default:
		n.drop(ctx, dropReasonQueueFull)
	}
}

// Close delivers what is still queued, then closes every sink that holds a connection.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	<-n.done

	var errs []error

	for _, sink := range n.sinks {
		if closer, ok := sink.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}

	return errors.Join(errs...)
}

func (n *Notifier) run() {
	defer close(n.done)

	for d := range n.queue {
		for _, sink := range n.sinks {
			n.deliver(d.ctx, sink, d.message)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, sink Sink, message string) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	retryMetrics, err := shell.RetryWithExponentialBackoff(
		ctx,
		func(ctx context.Context) error { return sink.Deliver(ctx, message) },
		n.retryOptionsFor(sink)...,
	)

	labels := map[string]string{logAttrSink: sink.Name()}

	if err != nil {
		n.incrementCounter(ctx, NotificationsFailedMetric, labels)
		n.logWarn(ctx, logMsgDeliveryFailed,
			logAttrSink, sink.Name(),
			logAttrAttempts, retryMetrics.Attempts,
			logAttrError, err.Error())

		return
	}

	n.incrementCounter(ctx, NotificationsDeliveredMetric, labels)
}

func (n *Notifier) retryOptionsFor(sink Sink) []shell.RetryOption {
	options := make([]shell.RetryOption, 0, len(n.retryOptions)+2)
	options = append(options, shell.WithRetryableErrors(isRetryableDelivery))
	options = append(options, n.retryOptions...)

	if n.metricsCollector != nil {
		options = append(options, shell.WithRetryMetrics(n.metricsCollector, retryOperationPrefix+sink.Name()))
	}

	return options
}

func isRetryableDelivery(err error) bool {
	return !errors.Is(err, ErrPermanentDelivery) && !shell.IsCancellationError(err) && !shell.IsTimeoutError(err)
}

func (n *Notifier) drop(ctx context.Context, reason string) {
	n.incrementCounter(ctx, NotificationsDroppedMetric, map[string]string{logAttrReason: reason})
	n.logWarn(ctx, logMsgNotificationDropped, logAttrReason, reason)
}

func (n *Notifier) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if n.metricsCollector == nil {
		return
	}

	if contextual, ok := n.metricsCollector.(shell.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	n.metricsCollector.IncrementCounter(metric, labels)
}

func (n *Notifier) logWarn(ctx context.Context, msg string, args ...any) {
	if n.contextualLogger != nil {
		n.contextualLogger.WarnContext(ctx, msg, args...)
	}

	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}
