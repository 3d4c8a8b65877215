package actions

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/book-rental-go/library/features/query/borrowings"
	"github.com/AntonStoeckl/book-rental-go/library/features/query/payments"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

/*** inputs ***/

type idInput struct {
	ID string `json:"id"`
}

type sessionInput struct {
	SessionID string `json:"session_id"`
}

type createBorrowingInput struct {
	ID                 string `json:"id"`
	Book               string `json:"book"`
	ExpectedReturnDate string `json:"expected_return_date"`
}

type listBorrowingsInput struct {
	User     string `json:"user"`
	IsActive string `json:"is_active"`
}

/*** outputs ***/

type borrowingCreatedOutput struct {
	borrowings.BorrowingView
	Payment payments.PaymentView `json:"payment"`
}

type statusOutput struct {
	Status string `json:"status"`
}

type overdueReturnOutput struct {
	Message    string `json:"message"`
	PaymentURL string `json:"payment_url"`
}

type expireSessionsOutput struct {
	Checked int `json:"checked"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type scanOverdueOutput struct {
	Overdue int `json:"overdue"`
}

/*** decoding helpers ***/

func decode[T any](input []byte) (T, error) {
	var value T

	if len(bytes.TrimSpace(input)) == 0 {
		return value, nil
	}

	if err := json.Unmarshal(input, &value); err != nil {
		return value, errors.Join(core.ErrMalformedInput, err)
	}

	return value, nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a uuid: %w", core.ErrMalformedInput, field, err)
	}

	return id, nil
}

// parseIDList parses a comma-separated list of ids, empty entries are skipped.
func parseIDList(field, value string) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := parseID(field, part)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// parseOptionalBool accepts "true", "false" or nothing.
func parseOptionalBool(field, value string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return nil, nil
	case "true":
		flag := true
		return &flag, nil
	case "false":
		flag := false
		return &flag, nil
	default:
		return nil, fmt.Errorf("%w: %s must be true or false", core.ErrMalformedInput, field)
	}
}
