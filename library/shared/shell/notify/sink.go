package notify

import (
	"context"

	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
)

// Sink delivers one message to one channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, message string) error
}

const logMsgNotification = "notification"

// LogSink writes every message to a logger at info level.
type LogSink struct {
	logger shell.Logger
}

func NewLogSink(logger shell.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Deliver(_ context.Context, message string) error {
	s.logger.Info(logMsgNotification, "text", message)
	return nil
}
