package notify

import (
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// Envelope is the JSON body published to the message brokers.
type Envelope struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEnvelope wraps a message with a fresh time-ordered id.
func NewEnvelope(text string, now time.Time) (Envelope, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{ID: id, Text: text, CreatedAt: now.UTC()}, nil
}

// Marshal encodes the envelope as JSON.
func (e Envelope) Marshal() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}
