package rentalstore

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tx is the set of operations available inside one all-or-nothing transaction.
//
// The Lock* methods take a row lock that is held until the transaction ends,
// so concurrent transactions touching the same rows are serialized.
// All methods return ErrNotFound (possibly joined with more context) for unknown ids.
type Tx interface {
	LockBook(ctx context.Context, bookID uuid.UUID) (Book, error)
	SetBookInventory(ctx context.Context, bookID uuid.UUID, inventory int) error

	// LockUser serializes all transactions of one user until the transaction ends.
	LockUser(ctx context.Context, userID uuid.UUID) error
	CountPendingPayments(ctx context.Context, userID uuid.UUID) (int, error)

	InsertBorrowing(ctx context.Context, borrowing Borrowing) error
	LockBorrowing(ctx context.Context, borrowingID uuid.UUID) (Borrowing, error)

	// SetActualReturnDate returns ErrConcurrencyConflict if the borrowing was already returned.
	SetActualReturnDate(ctx context.Context, borrowingID uuid.UUID, returnDate time.Time) error

	InsertPayment(ctx context.Context, payment Payment) error
	LockPaymentOfBorrowing(ctx context.Context, borrowingID uuid.UUID, paymentType string) (Payment, error)
	LockPaymentBySession(ctx context.Context, sessionID string) (Payment, error)

	// UpdatePayment writes status and session fields; it returns ErrConcurrencyConflict
	// if the stored status is not expectedStatus.
	UpdatePayment(ctx context.Context, payment Payment, expectedStatus string) error
}

// TxFunc is the unit of work executed by RunInTx.
// Returning an error rolls back every change made through the Tx.
type TxFunc func(ctx context.Context, tx Tx) error
