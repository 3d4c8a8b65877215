package postgresengine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/postgresengine/internal/adapters"
)

// pgTx implements rentalstore.Tx on top of an open database transaction.
type pgTx struct {
	store *Store
	db    adapters.DBTx
}

func (tx *pgTx) LockBook(ctx context.Context, bookID uuid.UUID) (rentalstore.Book, error) {
	return tx.store.readBook(ctx, tx.db, bookID, true)
}

func (tx *pgTx) SetBookInventory(ctx context.Context, bookID uuid.UUID, inventory int) error {
	sqlQuery, err := tx.store.buildSetInventoryQuery(bookID, inventory)
	if err != nil {
		return tx.store.buildQueryFailed(ctx, err)
	}

	return tx.execExpectingOne(ctx, sqlQuery, notFound("book", bookID.String()))
}

func (tx *pgTx) LockUser(ctx context.Context, userID uuid.UUID) error {
	sqlQuery, err := tx.store.buildAdvisoryUserLockQuery(userID)
	if err != nil {
		return tx.store.buildQueryFailed(ctx, err)
	}

	_, err = readAll(ctx, tx.store, tx.db, sqlQuery, func(adapters.DBRows) (struct{}, error) {
		return struct{}{}, nil
	})

	return err
}

func (tx *pgTx) CountPendingPayments(ctx context.Context, userID uuid.UUID) (int, error) {
	sqlQuery, err := tx.store.buildCountPendingPaymentsQuery(userID)
	if err != nil {
		return 0, tx.store.buildQueryFailed(ctx, err)
	}

	count, err := readOne(ctx, tx.store, tx.db, sqlQuery, scanCount, "pending payment count of user", userID.String())
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func (tx *pgTx) InsertBorrowing(ctx context.Context, borrowing rentalstore.Borrowing) error {
	sqlQuery, err := tx.store.buildInsertBorrowingQuery(borrowing)
	if err != nil {
		return tx.store.buildQueryFailed(ctx, err)
	}

	_, err = tx.store.exec(ctx, tx.db, sqlQuery)

	return err
}

func (tx *pgTx) LockBorrowing(ctx context.Context, borrowingID uuid.UUID) (rentalstore.Borrowing, error) {
	return tx.store.readBorrowing(ctx, tx.db, borrowingID, true)
}

func (tx *pgTx) SetActualReturnDate(ctx context.Context, borrowingID uuid.UUID, returnDate time.Time) error {
	sqlQuery, err := tx.store.buildSetActualReturnDateQuery(borrowingID, returnDate)
	if err != nil {
		return tx.store.buildQueryFailed(ctx, err)
	}

	return tx.execExpectingOne(ctx, sqlQuery, rentalstore.ErrConcurrencyConflict)
}

func (tx *pgTx) InsertPayment(ctx context.Context, payment rentalstore.Payment) error {
	sqlQuery, err := tx.store.buildInsertPaymentQuery(payment)
	if err != nil {
		return tx.store.buildQueryFailed(ctx, err)
	}

	_, err = tx.store.exec(ctx, tx.db, sqlQuery)

	return err
}

func (tx *pgTx) LockPaymentOfBorrowing(
	ctx context.Context,
	borrowingID uuid.UUID,
	paymentType string,
) (rentalstore.Payment, error) {

	sqlQuery, err := tx.store.buildLockPaymentOfBorrowingQuery(borrowingID, paymentType)
	if err != nil {
		return rentalstore.Payment{}, tx.store.buildQueryFailed(ctx, err)
	}

	return readOne(ctx, tx.store, tx.db, sqlQuery, scanPayment, paymentType+" payment of borrowing", borrowingID.String())
}

func (tx *pgTx) LockPaymentBySession(ctx context.Context, sessionID string) (rentalstore.Payment, error) {
	return tx.store.readPaymentBySession(ctx, tx.db, sessionID, true)
}

func (tx *pgTx) UpdatePayment(ctx context.Context, payment rentalstore.Payment, expectedStatus string) error {
	sqlQuery, err := tx.store.buildUpdatePaymentQuery(payment, expectedStatus)
	if err != nil {
		return tx.store.buildQueryFailed(ctx, err)
	}

	return tx.execExpectingOne(ctx, sqlQuery, rentalstore.ErrConcurrencyConflict)
}

// execExpectingOne executes a guarded statement and returns noMatchErr when no row was affected.
func (tx *pgTx) execExpectingOne(ctx context.Context, sqlQuery string, noMatchErr error) error {
	rowsAffected, err := tx.store.exec(ctx, tx.db, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return noMatchErr
	}

	return nil
}

var _ rentalstore.Tx = (*pgTx)(nil)
