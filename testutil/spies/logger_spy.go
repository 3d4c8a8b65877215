package spies

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
	HasCtx  bool
}

// LoggerSpy captures log calls. It implements the plain Logger and the ContextualLogger interfaces.
type LoggerSpy struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewLoggerSpy creates an empty LoggerSpy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record(slog.LevelDebug, msg, false, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.record(slog.LevelInfo, msg, false, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.record(slog.LevelWarn, msg, false, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record(slog.LevelError, msg, false, args) }

func (s *LoggerSpy) DebugContext(_ context.Context, msg string, args ...any) {
	s.record(slog.LevelDebug, msg, true, args)
}

func (s *LoggerSpy) InfoContext(_ context.Context, msg string, args ...any) {
	s.record(slog.LevelInfo, msg, true, args)
}

func (s *LoggerSpy) WarnContext(_ context.Context, msg string, args ...any) {
	s.record(slog.LevelWarn, msg, true, args)
}

func (s *LoggerSpy) ErrorContext(_ context.Context, msg string, args ...any) {
	s.record(slog.LevelError, msg, true, args)
}

// Records returns a copy of all captured records.
func (s *LoggerSpy) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]LogRecord(nil), s.records...)
}

// HasMessage reports whether a record at level contains msgPart.
func (s *LoggerSpy) HasMessage(level slog.Level, msgPart string) bool {
	for _, record := range s.Records() {
		if record.Level == level && strings.Contains(record.Message, msgPart) {
			return true
		}
	}

	return false
}

// CountAt returns the number of records at level.
func (s *LoggerSpy) CountAt(level slog.Level) int {
	count := 0

	for _, record := range s.Records() {
		if record.Level == level {
			count++
		}
	}

	return count
}

func (s *LoggerSpy) record(level slog.Level, msg string, hasCtx bool, args []any) {
	attrs := make(map[string]any)

	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			attrs[key] = args[i+1]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, LogRecord{Level: level, Message: msg, Attrs: attrs, HasCtx: hasCtx})
}

var (
	_ rentalstore.Logger           = (*LoggerSpy)(nil)
	_ rentalstore.ContextualLogger = (*LoggerSpy)(nil)
)
