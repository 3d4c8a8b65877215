package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var ErrTelegramRejected = errors.New("telegram rejected the message")

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// TelegramSink sends messages to one chat through the Telegram Bot API.
type TelegramSink struct {
	client   *http.Client
	endpoint string
	chatID   string
}

// NewTelegramSink creates a TelegramSink; a nil client means http.DefaultClient.
func NewTelegramSink(apiURL, botToken, chatID string, client *http.Client) *TelegramSink {
	if client == nil {
		client = http.DefaultClient
	}

	return &TelegramSink{
		client:   client,
		endpoint: fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(apiURL, "/"), botToken),
		chatID:   chatID,
	}
}

func (s *TelegramSink) Name() string {
	return "telegram"
}

func (s *TelegramSink) Deliver(ctx context.Context, message string) error {
	body, err := jsoniter.ConfigFastest.Marshal(telegramMessage{ChatID: s.chatID, Text: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: status %d: %s", ErrTelegramRejected, resp.StatusCode, bytes.TrimSpace(detail))

		// client errors other than 429 are permanent
		if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return errors.Join(ErrPermanentDelivery, err)
		}

		return err
	}

	return nil
}
