package shell_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

func Test_BorrowingFromRecord_NormalizesDates(t *testing.T) {
	// arrange
	returned := time.Date(2026, 1, 9, 13, 30, 0, 0, time.UTC)
	record := rentalstore.Borrowing{
		ID:                 uuid.New(),
		BorrowDate:         time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		ExpectedReturnDate: time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
		ActualReturnDate:   &returned,
		BookID:             uuid.New(),
		UserID:             uuid.New(),
		BookTitle:          "Dune",
	}

	// act
	borrowing := shell.BorrowingFromRecord(record)

	// assert
	assert.Equal(t, "2026-01-02", core.FormatDate(borrowing.BorrowDate))
	assert.Equal(t, time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC), *borrowing.ActualReturnDate)
	assert.False(t, borrowing.IsActive())
	assert.Equal(t, "Dune", borrowing.BookTitle)

	back := shell.BorrowingToRecord(borrowing)
	assert.Equal(t, record.ID, back.ID)
	assert.Empty(t, back.BookTitle)
}

func Test_PaymentRecord_Conversion(t *testing.T) {
	// arrange
	payment := core.Payment{
		ID:          uuid.New(),
		Status:      core.PaymentPending,
		Type:        core.PaymentTypeFine,
		BorrowingID: uuid.New(),
		SessionID:   "cs_test_1",
		SessionURL:  "https://checkout.example/cs_test_1",
		Amount:      decimal.RequireFromString("100.00"),
		UserID:      uuid.New(),
	}

	// act
	record := shell.PaymentToRecord(payment)
	back := shell.PaymentFromRecord(record)

	// assert
	assert.Equal(t, rentalstore.PaymentStatusPending, record.Status)
	assert.Equal(t, rentalstore.PaymentTypeFine, record.Type)
	assert.Equal(t, uuid.Nil, record.UserID)
	assert.Equal(t, payment.SessionID, back.SessionID)
	assert.True(t, payment.Amount.Equal(back.Amount))
}

func Test_BookRecord_Conversion(t *testing.T) {
	// arrange
	book := core.Book{ID: uuid.New(), Title: "Dune", Cover: core.CoverSoft, Inventory: 2, DailyFee: decimal.NewFromInt(3)}

	// act
	books := shell.BooksFromRecords([]rentalstore.Book{shell.BookToRecord(book)})

	// assert
	assert.Equal(t, []core.Book{book}, books)
}

func Test_MapStoreError(t *testing.T) {
	storeErr := errors.Join(rentalstore.ErrNotFound, errors.New("borrowing 42"))

	mapped := shell.MapStoreError(storeErr, core.ErrBorrowingNotFound)
	assert.ErrorIs(t, mapped, core.ErrNotFound)
	assert.ErrorIs(t, mapped, rentalstore.ErrNotFound)

	assert.Equal(t, rentalstore.ErrQueryingFailed, shell.MapStoreError(rentalstore.ErrQueryingFailed, core.ErrBorrowingNotFound))
	assert.NoError(t, shell.MapStoreError(nil, core.ErrBorrowingNotFound))
}

func Test_MapGatewayError(t *testing.T) {
	boom := errors.New("connection refused")

	mapped := shell.MapGatewayError(boom)
	assert.ErrorIs(t, mapped, core.ErrUpstreamGateway)
	assert.ErrorIs(t, mapped, boom)

	alreadyMapped := errors.Join(core.ErrUpstreamGateway, boom)
	assert.Equal(t, alreadyMapped, shell.MapGatewayError(alreadyMapped))
	assert.NoError(t, shell.MapGatewayError(nil))
}
