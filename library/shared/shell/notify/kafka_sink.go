package notify

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Writer is the part of *kafka.Writer the sink uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes message envelopes to a topic, keyed by envelope id.
type KafkaSink struct {
	writer Writer
	now    func() time.Time
}

// NewKafkaSink creates a sink writing to topic on broker.
func NewKafkaSink(broker, topic string) *KafkaSink {
	return NewKafkaSinkWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	})
}

// NewKafkaSinkWithWriter creates a sink on a given writer.
func NewKafkaSinkWithWriter(writer Writer) *KafkaSink {
	return &KafkaSink{writer: writer, now: time.Now}
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Deliver(ctx context.Context, message string) error {
	envelope, err := NewEnvelope(message, s.now())
	if err != nil {
		return err
	}

	body, err := envelope.Marshal()
	if err != nil {
		return err
	}

	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(envelope.ID.String()),
		Value: body,
		Time:  envelope.CreatedAt,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
