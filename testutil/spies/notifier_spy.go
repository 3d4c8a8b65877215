package spies

import (
	"context"
	"strings"
	"sync"
)

// NotifierSpy records notification messages instead of delivering them.
type NotifierSpy struct {
	mu       sync.Mutex
	messages []string
}

func NewNotifierSpy() *NotifierSpy {
	return &NotifierSpy{}
}

func (s *NotifierSpy) Notify(_ context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, message)
}

// Messages returns a copy of all recorded messages.
func (s *NotifierSpy) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.messages...)
}

// HasMessageStartingWith reports whether any message starts with prefix.
func (s *NotifierSpy) HasMessageStartingWith(prefix string) bool {
	for _, message := range s.Messages() {
		if strings.HasPrefix(message, prefix) {
			return true
		}
	}

	return false
}
