package memengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// memTx applies changes directly to the store maps; RunInTx restores the snapshot on failure.
type memTx struct {
	store *Store
}

func (tx *memTx) LockBook(_ context.Context, bookID uuid.UUID) (rentalstore.Book, error) {
	book, exists := tx.store.books[bookID]
	if !exists {
		return rentalstore.Book{}, notFound("book", bookID.String())
	}

	return book, nil
}

func (tx *memTx) SetBookInventory(_ context.Context, bookID uuid.UUID, inventory int) error {
	book, exists := tx.store.books[bookID]
	if !exists {
		return notFound("book", bookID.String())
	}

	book.Inventory = inventory
	tx.store.books[bookID] = book

	return nil
}

func (tx *memTx) LockUser(context.Context, uuid.UUID) error {
	return nil // the writer lock already serializes everything
}

func (tx *memTx) CountPendingPayments(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0

	for _, payment := range tx.store.payments {
		if payment.Status != rentalstore.PaymentStatusPending {
			continue
		}

		if tx.store.borrowings[payment.BorrowingID].UserID == userID {
			count++
		}
	}

	return count, nil
}

func (tx *memTx) InsertBorrowing(_ context.Context, borrowing rentalstore.Borrowing) error {
	if _, exists := tx.store.borrowings[borrowing.ID]; exists {
		return errors.Join(rentalstore.ErrDuplicateRecord, fmt.Errorf("borrowing %s", borrowing.ID))
	}

	if _, exists := tx.store.books[borrowing.BookID]; !exists {
		return notFound("book", borrowing.BookID.String())
	}

	borrowing.BookTitle = ""
	borrowing.BorrowDate = dateOnly(borrowing.BorrowDate)
	borrowing.ExpectedReturnDate = dateOnly(borrowing.ExpectedReturnDate)
	tx.store.borrowings[borrowing.ID] = borrowing

	return nil
}

func (tx *memTx) LockBorrowing(_ context.Context, borrowingID uuid.UUID) (rentalstore.Borrowing, error) {
	return tx.store.borrowing(borrowingID)
}

func (tx *memTx) SetActualReturnDate(_ context.Context, borrowingID uuid.UUID, returnDate time.Time) error {
	borrowing, exists := tx.store.borrowings[borrowingID]
	if !exists {
		return notFound("borrowing", borrowingID.String())
	}

	if borrowing.ActualReturnDate != nil {
		return rentalstore.ErrConcurrencyConflict
	}

	returned := dateOnly(returnDate)
	borrowing.ActualReturnDate = &returned
	tx.store.borrowings[borrowingID] = borrowing

	return nil
}

func (tx *memTx) InsertPayment(_ context.Context, payment rentalstore.Payment) error {
	if _, exists := tx.store.payments[payment.ID]; exists {
		return errors.Join(rentalstore.ErrDuplicateRecord, fmt.Errorf("payment %s", payment.ID))
	}

	if _, exists := tx.store.borrowings[payment.BorrowingID]; !exists {
		return notFound("borrowing", payment.BorrowingID.String())
	}

	payment.UserID = uuid.Nil
	payment.BookTitle = ""
	tx.store.payments[payment.ID] = payment

	return nil
}

func (tx *memTx) LockPaymentOfBorrowing(
	_ context.Context,
	borrowingID uuid.UUID,
	paymentType string,
) (rentalstore.Payment, error) {

	var found *uuid.UUID

	for id, payment := range tx.store.payments {
		if payment.BorrowingID != borrowingID || payment.Type != paymentType {
			continue
		}

		if found == nil || compareIDs(id, *found) > 0 {
			latest := id
			found = &latest
		}
	}

	if found == nil {
		return rentalstore.Payment{}, notFound(paymentType+" payment of borrowing", borrowingID.String())
	}

	return tx.store.payment(*found)
}

func (tx *memTx) LockPaymentBySession(_ context.Context, sessionID string) (rentalstore.Payment, error) {
	return tx.store.paymentBySession(sessionID)
}

func (tx *memTx) UpdatePayment(_ context.Context, payment rentalstore.Payment, expectedStatus string) error {
	stored, exists := tx.store.payments[payment.ID]
	if !exists {
		return notFound("payment", payment.ID.String())
	}

	if stored.Status != expectedStatus {
		return rentalstore.ErrConcurrencyConflict
	}

	stored.Status = payment.Status
	stored.SessionID = payment.SessionID
	stored.SessionURL = payment.SessionURL
	tx.store.payments[payment.ID] = stored

	return nil
}

var _ rentalstore.Tx = (*memTx)(nil)
