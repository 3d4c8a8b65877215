package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/memengine"
)

// BookInserter is implemented by every store engine.
type BookInserter interface {
	InsertBook(ctx context.Context, book rentalstore.Book) error
}

// Book creates a hard cover book record with a fresh id.
func Book(title string, inventory int, dailyFee string) rentalstore.Book {
	return rentalstore.Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    "Test Author",
		Cover:     rentalstore.CoverHard,
		Inventory: inventory,
		DailyFee:  decimal.RequireFromString(dailyFee),
	}
}

// Day parses a YYYY-MM-DD calendar day in UTC.
func Day(t testing.TB, value string) time.Time {
	day, err := time.Parse(rentalstore.DateLayout, value)
	require.NoError(t, err)

	return day
}

// SeedBooks inserts the books or fails the test.
func SeedBooks(t testing.TB, store BookInserter, books ...rentalstore.Book) {
	for _, book := range books {
		require.NoError(t, store.InsertBook(context.Background(), book))
	}
}

// NewMemStore creates an empty in-memory store or fails the test.
func NewMemStore(t testing.TB, options ...memengine.Option) *memengine.Store {
	store, err := memengine.NewStore(options...)
	require.NoError(t, err)

	return store
}

// TxRunner is implemented by every store engine.
type TxRunner interface {
	RunInTx(ctx context.Context, fn rentalstore.TxFunc) error
}

// SeedBorrowing inserts an active borrowing of book for userID, borrowed on borrowDay for days days.
func SeedBorrowing(
	t testing.TB,
	store TxRunner,
	book rentalstore.Book,
	userID uuid.UUID,
	borrowDay time.Time,
	days int,
) rentalstore.Borrowing {

	borrowing := rentalstore.Borrowing{
		ID:                 uuid.New(),
		BorrowDate:         borrowDay,
		ExpectedReturnDate: borrowDay.AddDate(0, 0, days),
		BookID:             book.ID,
		UserID:             userID,
	}

	err := store.RunInTx(context.Background(), func(ctx context.Context, tx rentalstore.Tx) error {
		return tx.InsertBorrowing(ctx, borrowing)
	})
	require.NoError(t, err)

	borrowing.BookTitle = book.Title

	return borrowing
}

// SeedPayment inserts a payment of the borrowing mirroring sessionID.
func SeedPayment(
	t testing.TB,
	store TxRunner,
	borrowing rentalstore.Borrowing,
	paymentType string,
	status string,
	sessionID string,
	amount string,
) rentalstore.Payment {

	payment := rentalstore.Payment{
		ID:          uuid.New(),
		Status:      status,
		Type:        paymentType,
		BorrowingID: borrowing.ID,
		SessionID:   sessionID,
		SessionURL:  "https://checkout.local/" + sessionID,
		Amount:      decimal.RequireFromString(amount),
	}

	err := store.RunInTx(context.Background(), func(ctx context.Context, tx rentalstore.Tx) error {
		return tx.InsertPayment(ctx, payment)
	})
	require.NoError(t, err)

	payment.UserID = borrowing.UserID
	payment.BookTitle = borrowing.BookTitle

	return payment
}
