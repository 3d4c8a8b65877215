package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the part of *amqp.Channel the sink uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQSink publishes message envelopes to a durable queue.
type RabbitMQSink struct {
	conn    *amqp.Connection
	channel amqpChannel
	queue   string
	now     func() time.Time
}

// NewRabbitMQSink dials the broker, opens a channel and declares the queue.
func NewRabbitMQSink(url, queue string) (*RabbitMQSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening rabbitmq channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring rabbitmq queue %s: %w", queue, err)
	}

	sink := NewRabbitMQSinkWithChannel(channel, queue)
	sink.conn = conn

	return sink, nil
}

// NewRabbitMQSinkWithChannel creates a sink on an already prepared channel.
func NewRabbitMQSinkWithChannel(channel amqpChannel, queue string) *RabbitMQSink {
	return &RabbitMQSink{channel: channel, queue: queue, now: time.Now}
}

func (s *RabbitMQSink) Name() string {
	return "rabbitmq"
}

func (s *RabbitMQSink) Deliver(ctx context.Context, message string) error {
	envelope, err := NewEnvelope(message, s.now())
	if err != nil {
		return err
	}

	body, err := envelope.Marshal()
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		"",      // default exchange
		s.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    envelope.ID.String(),
			Timestamp:    envelope.CreatedAt,
			Body:         body,
		},
	)
}

// Close closes the channel and, if the sink dialed it, the connection.
func (s *RabbitMQSink) Close() error {
	err := s.channel.Close()

	if s.conn != nil {
		err = errors.Join(err, s.conn.Close())
	}

	return err
}
