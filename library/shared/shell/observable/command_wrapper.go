package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
)

// CommandWrapper adds metrics, tracing and logging to any command handler.
type CommandWrapper[C shell.Command, R shell.CommandResult] struct {
	coreHandler      shell.CoreCommandHandler[C, R]
	commandType      string
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewCommandWrapper creates a new observable wrapper around the core command handler.
func NewCommandWrapper[C shell.Command, R shell.CommandResult](
	coreHandler shell.CoreCommandHandler[C, R],
	opts ...CommandOption[C, R],
) (*CommandWrapper[C, R], error) {

	var zeroCommand C

	wrapper := &CommandWrapper[C, R]{
		coreHandler: coreHandler,
		commandType: zeroCommand.CommandType(),
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the core handler and records the outcome.
func (w *CommandWrapper[C, R]) Handle(ctx context.Context, command C) (R, error) {
	commandStart := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, w.tracingCollector, w.commandType)
	shell.LogStart(ctx, w.logger, w.contextualLogger, shell.LogMsgCommandStarted, shell.LogAttrCommandType, w.commandType)

	result, err := w.coreHandler.Handle(ctx, command)
	duration := time.Since(commandStart)

	if err != nil {
		status := shell.ClassifyError(err)
		msg := shell.LogMsgCommandFailed
		if status == shell.StatusRejected {
			msg = shell.LogMsgCommandRejected
		}

		shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
		shell.FinishSpan(w.tracingCollector, span, status, duration, err)
		shell.LogFailure(ctx, w.logger, w.contextualLogger, msg, shell.LogAttrCommandType, w.commandType, status, err)

		return result, err
	}

	status := shell.StatusSuccess
	if result.Outcome().Idempotent {
		status = shell.StatusIdempotent
	}

	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
	shell.FinishSpan(w.tracingCollector, span, status, duration, nil)
	shell.LogSuccess(ctx, w.logger, w.contextualLogger,
		shell.LogMsgCommandCompleted, shell.LogAttrCommandType, w.commandType, status, duration)

	return result, nil
}

// CommandOption defines a functional option for configuring CommandWrapper.
type CommandOption[C shell.Command, R shell.CommandResult] func(*CommandWrapper[C, R]) error

// WithCommandMetrics sets the metrics collector for the CommandWrapper.
func WithCommandMetrics[C shell.Command, R shell.CommandResult](collector shell.MetricsCollector) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithCommandTracing sets the tracing collector for the CommandWrapper.
func WithCommandTracing[C shell.Command, R shell.CommandResult](collector shell.TracingCollector) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.tracingCollector = collector
		return nil
	}
}

// WithCommandContextualLogging sets the contextual logger for the CommandWrapper.
func WithCommandContextualLogging[C shell.Command, R shell.CommandResult](logger shell.ContextualLogger) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithCommandLogging sets the basic logger for the CommandWrapper.
func WithCommandLogging[C shell.Command, R shell.CommandResult](logger shell.Logger) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.logger = logger
		return nil
	}
}
