package postgresengine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/postgresengine"
	"github.com/AntonStoeckl/book-rental-go/testutil/pgtest"
)

var errOutOfStock = errors.New("out of stock")

func Test_Postgres_BorrowingLifecycle(t *testing.T) {
	// arrange
	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	wrapper.Reset(t)
	store := wrapper.GetStore()
	ctx := context.Background()

	book := givenBook(t, store, 2)
	userID := uuid.New()
	borrowing := rentalstore.Borrowing{
		ID:                 uuid.New(),
		BorrowDate:         date(2025, 3, 1),
		ExpectedReturnDate: date(2025, 3, 8),
		BookID:             book.ID,
		UserID:             userID,
	}
	payment := rentalstore.Payment{
		ID:          uuid.New(),
		Status:      rentalstore.PaymentStatusPending,
		Type:        rentalstore.PaymentTypePayment,
		BorrowingID: borrowing.ID,
		SessionID:   "cs_test_" + uuid.NewString(),
		SessionURL:  "https://checkout.example/session",
		Amount:      decimal.RequireFromString("175.00"),
	}

	// act
	err := store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
		require.NoError(t, tx.LockUser(ctx, userID))

		pending, countErr := tx.CountPendingPayments(ctx, userID)
		require.NoError(t, countErr)
		require.Equal(t, 0, pending)

		locked, lockErr := tx.LockBook(ctx, book.ID)
		require.NoError(t, lockErr)
		require.NoError(t, tx.SetBookInventory(ctx, book.ID, locked.Inventory-1))
		require.NoError(t, tx.InsertBorrowing(ctx, borrowing))

		return tx.InsertPayment(ctx, payment)
	})

	// assert
	require.NoError(t, err)

	storedBook, err := store.BookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedBook.Inventory)

	storedBorrowing, err := store.BorrowingByID(ctx, borrowing.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 3, 8), storedBorrowing.ExpectedReturnDate)
	assert.Equal(t, book.Title, storedBorrowing.BookTitle)
	assert.True(t, storedBorrowing.IsActive())

	storedPayment, err := store.PaymentBySession(ctx, payment.SessionID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, storedPayment.ID)
	assert.Equal(t, userID, storedPayment.UserID)
	assert.True(t, payment.Amount.Equal(storedPayment.Amount))

	active, err := store.ListBorrowings(ctx, rentalstore.BuildBorrowingFilter().OwnedByAnyOf(userID).OnlyActive().Finalize())
	require.NoError(t, err)
	assert.Len(t, active, 1)

	pending, err := store.ListPayments(ctx, rentalstore.BuildPaymentFilter().
		OwnedByAnyOf(userID).
		WithAnyStatusOf(rentalstore.PaymentStatusPending).
		Finalize())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func Test_Postgres_ReturnAndPaymentUpdatesAreGuarded(t *testing.T) {
	// arrange
	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	wrapper.Reset(t)
	store := wrapper.GetStore()
	ctx := context.Background()

	book := givenBook(t, store, 1)
	borrowing, payment := givenBorrowingWithPayment(t, store, book.ID)

	// act
	firstReturn := store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
		return tx.SetActualReturnDate(ctx, borrowing.ID, date(2025, 3, 10))
	})
	secondReturn := store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
		return tx.SetActualReturnDate(ctx, borrowing.ID, date(2025, 3, 11))
	})
	paid := payment
	paid.Status = rentalstore.PaymentStatusPaid
	firstUpdate := store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
		return tx.UpdatePayment(ctx, paid, rentalstore.PaymentStatusPending)
	})
	secondUpdate := store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
		return tx.UpdatePayment(ctx, paid, rentalstore.PaymentStatusPending)
	})

	// assert
	require.NoError(t, firstReturn)
	assert.ErrorIs(t, secondReturn, rentalstore.ErrConcurrencyConflict)
	require.NoError(t, firstUpdate)
	assert.ErrorIs(t, secondUpdate, rentalstore.ErrConcurrencyConflict)

	stored, err := store.BorrowingByID(ctx, borrowing.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ActualReturnDate)
	assert.Equal(t, date(2025, 3, 10), *stored.ActualReturnDate)
}

func Test_Postgres_ConcurrentTransactionsNeverOversellInventory(t *testing.T) {
	// arrange
	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	wrapper.Reset(t)
	store := wrapper.GetStore()
	ctx := context.Background()

	const inventory = 3
	const attempts = 10
	book := givenBook(t, store, inventory)

	var succeeded atomic.Int32
	var wg sync.WaitGroup

	// act
	for range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
				locked, err := tx.LockBook(ctx, book.ID)
				if err != nil {
					return err
				}

				if locked.Inventory == 0 {
					return errOutOfStock
				}

				return tx.SetBookInventory(ctx, book.ID, locked.Inventory-1)
			})

			if err == nil {
				succeeded.Add(1)
			}
		}()
	}

	wg.Wait()

	// assert
	assert.Equal(t, int32(inventory), succeeded.Load())

	stored, err := store.BookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Inventory)
}

func Test_Postgres_DeleteBookCascades(t *testing.T) {
	// arrange
	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	wrapper.Reset(t)
	store := wrapper.GetStore()
	ctx := context.Background()

	book := givenBook(t, store, 1)
	borrowing, payment := givenBorrowingWithPayment(t, store, book.ID)

	// act
	err := store.DeleteBook(ctx, book.ID)

	// assert
	require.NoError(t, err)

	_, err = store.BorrowingByID(ctx, borrowing.ID)
	assert.ErrorIs(t, err, rentalstore.ErrNotFound)

	_, err = store.PaymentByID(ctx, payment.ID)
	assert.ErrorIs(t, err, rentalstore.ErrNotFound)

	assert.ErrorIs(t, store.DeleteBook(ctx, book.ID), rentalstore.ErrNotFound)
}

func Test_Postgres_InsertBook_RejectsDuplicateID(t *testing.T) {
	// arrange
	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	wrapper.Reset(t)
	store := wrapper.GetStore()

	book := givenBook(t, store, 1)

	// act
	err := store.InsertBook(context.Background(), book)

	// assert
	assert.ErrorIs(t, err, rentalstore.ErrDuplicateRecord)
}

func givenBook(t *testing.T, store *postgresengine.Store, inventory int) rentalstore.Book {
	t.Helper()

	book := rentalstore.Book{
		ID:        uuid.New(),
		Title:     "Dune",
		Author:    "Frank Herbert",
		Cover:     rentalstore.CoverHard,
		Inventory: inventory,
		DailyFee:  decimal.RequireFromString("25.00"),
	}
	require.NoError(t, store.InsertBook(context.Background(), book))

	return book
}

func givenBorrowingWithPayment(
	t *testing.T,
	store *postgresengine.Store,
	bookID uuid.UUID,
) (rentalstore.Borrowing, rentalstore.Payment) {

	t.Helper()

	borrowing := rentalstore.Borrowing{
		ID:                 uuid.New(),
		BorrowDate:         date(2025, 3, 1),
		ExpectedReturnDate: date(2025, 3, 8),
		BookID:             bookID,
		UserID:             uuid.New(),
	}
	payment := rentalstore.Payment{
		ID:          uuid.New(),
		Status:      rentalstore.PaymentStatusPending,
		Type:        rentalstore.PaymentTypePayment,
		BorrowingID: borrowing.ID,
		SessionID:   "cs_test_" + uuid.NewString(),
		Amount:      decimal.RequireFromString("175.00"),
	}

	err := store.RunInTx(context.Background(), func(ctx context.Context, tx rentalstore.Tx) error {
		if err := tx.InsertBorrowing(ctx, borrowing); err != nil {
			return err
		}

		return tx.InsertPayment(ctx, payment)
	})
	require.NoError(t, err)

	return borrowing, payment
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
