package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/notify"
	"github.com/AntonStoeckl/book-rental-go/testutil/spies"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	closed    bool
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}

	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)

	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeWriter struct {
	messages []kafka.Message
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func Test_TelegramSink_PostsChatMessage(t *testing.T) {
	// arrange
	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = jsoniter.ConfigFastest.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := notify.NewTelegramSink(server.URL+"/", "token123", "-10042", server.Client())

	// act
	err := sink.Deliver(context.Background(), "New borrowing created:\n")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "/bottoken123/sendMessage", gotPath)
	assert.Equal(t, map[string]string{"chat_id": "-10042", "text": "New borrowing created:\n"}, gotBody)
}

func Test_TelegramSink_ReportsRejectedMessage(t *testing.T) {
	// arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	sink := notify.NewTelegramSink(server.URL, "token123", "unknown", server.Client())

	// act
	err := sink.Deliver(context.Background(), "hello")

	// assert
	assert.ErrorIs(t, err, notify.ErrTelegramRejected)
	assert.ErrorIs(t, err, notify.ErrPermanentDelivery)
	assert.Contains(t, err.Error(), "chat not found")
}

func Test_TelegramSink_ServerErrorIsRetryable(t *testing.T) {
	// arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	sink := notify.NewTelegramSink(server.URL, "token123", "-10042", server.Client())

	// act
	err := sink.Deliver(context.Background(), "hello")

	// assert
	assert.ErrorIs(t, err, notify.ErrTelegramRejected)
	assert.NotErrorIs(t, err, notify.ErrPermanentDelivery)
}

func Test_RabbitMQSink_PublishesPersistentEnvelope(t *testing.T) {
	// arrange
	channel := &fakeChannel{}
	sink := notify.NewRabbitMQSinkWithChannel(channel, "rental.notifications")

	// act
	err := sink.Deliver(context.Background(), "borrowing returned")

	// assert
	require.NoError(t, err)
	require.Len(t, channel.published, 1)
	assert.Equal(t, []string{"rental.notifications"}, channel.keys)

	published := channel.published[0]
	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, amqp.Persistent, published.DeliveryMode)

	var envelope notify.Envelope
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal(published.Body, &envelope))
	assert.Equal(t, "borrowing returned", envelope.Text)
	assert.Equal(t, envelope.ID.String(), published.MessageId)

	require.NoError(t, sink.Close())
	assert.True(t, channel.closed)
}

func Test_KafkaSink_WritesKeyedEnvelope(t *testing.T) {
	// arrange
	writer := &fakeWriter{}
	sink := notify.NewKafkaSinkWithWriter(writer)

	// act
	err := sink.Deliver(context.Background(), "No borrowings overdue today!")

	// assert
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	var envelope notify.Envelope
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal(writer.messages[0].Value, &envelope))
	assert.Equal(t, "No borrowings overdue today!", envelope.Text)
	assert.Equal(t, envelope.ID.String(), string(writer.messages[0].Key))

	require.NoError(t, sink.Close())
	assert.True(t, writer.closed)
}

func Test_LogSink_LogsAtInfo(t *testing.T) {
	// arrange
	logger := spies.NewLoggerSpy()
	sink := notify.NewLogSink(logger)

	// act
	err := sink.Deliver(context.Background(), "hello")

	// assert
	require.NoError(t, err)
	assert.True(t, logger.HasMessage(slog.LevelInfo, "notification"))
	assert.Equal(t, "hello", logger.Records()[0].Attrs["text"])
}

func Test_RabbitMQSink_ReturnsPublishError(t *testing.T) {
	// arrange
	boom := errors.New("channel closed")
	sink := notify.NewRabbitMQSinkWithChannel(&fakeChannel{err: boom}, "q")

	// act
	err := sink.Deliver(context.Background(), "hello")

	// assert
	assert.ErrorIs(t, err, boom)
}
