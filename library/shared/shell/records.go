package shell

import (
	"errors"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// BookFromRecord converts a stored book into its domain form.
func BookFromRecord(r rentalstore.Book) core.Book {
	return core.Book{
		ID:        r.ID,
		Title:     r.Title,
		Author:    r.Author,
		Cover:     core.CoverFormat(r.Cover),
		Inventory: r.Inventory,
		DailyFee:  r.DailyFee,
	}
}

// BookToRecord converts a domain book into its stored form.
func BookToRecord(b core.Book) rentalstore.Book {
	return rentalstore.Book{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Cover:     string(b.Cover),
		Inventory: b.Inventory,
		DailyFee:  b.DailyFee,
	}
}

// BorrowingFromRecord converts a stored borrowing into its domain form.
func BorrowingFromRecord(r rentalstore.Borrowing) core.Borrowing {
	borrowing := core.Borrowing{
		ID:                 r.ID,
		BorrowDate:         core.ToDate(r.BorrowDate),
		ExpectedReturnDate: core.ToDate(r.ExpectedReturnDate),
		BookID:             r.BookID,
		UserID:             r.UserID,
		BookTitle:          r.BookTitle,
	}

	if r.ActualReturnDate != nil {
		returned := core.ToDate(*r.ActualReturnDate)
		borrowing.ActualReturnDate = &returned
	}

	return borrowing
}

// BorrowingToRecord converts a domain borrowing into its stored form.
func BorrowingToRecord(b core.Borrowing) rentalstore.Borrowing {
	record := rentalstore.Borrowing{
		ID:                 b.ID,
		BorrowDate:         b.BorrowDate,
		ExpectedReturnDate: b.ExpectedReturnDate,
		BookID:             b.BookID,
		UserID:             b.UserID,
	}

	if b.ActualReturnDate != nil {
		returned := *b.ActualReturnDate
		record.ActualReturnDate = &returned
	}

	return record
}

// PaymentFromRecord converts a stored payment into its domain form.
func PaymentFromRecord(r rentalstore.Payment) core.Payment {
	return core.Payment{
		ID:          r.ID,
		Status:      core.PaymentStatus(r.Status),
		Type:        core.PaymentType(r.Type),
		BorrowingID: r.BorrowingID,
		SessionID:   r.SessionID,
		SessionURL:  r.SessionURL,
		Amount:      r.Amount,
		UserID:      r.UserID,
		BookTitle:   r.BookTitle,
	}
}

// PaymentToRecord converts a domain payment into its stored form.
func PaymentToRecord(p core.Payment) rentalstore.Payment {
	return rentalstore.Payment{
		ID:          p.ID,
		Status:      string(p.Status),
		Type:        string(p.Type),
		BorrowingID: p.BorrowingID,
		SessionID:   p.SessionID,
		SessionURL:  p.SessionURL,
		Amount:      p.Amount,
	}
}

// BooksFromRecords converts a list of stored books.
func BooksFromRecords(records []rentalstore.Book) []core.Book {
	books := make([]core.Book, 0, len(records))
	for _, r := range records {
		books = append(books, BookFromRecord(r))
	}

	return books
}

// BorrowingsFromRecords converts a list of stored borrowings.
func BorrowingsFromRecords(records []rentalstore.Borrowing) []core.Borrowing {
	borrowings := make([]core.Borrowing, 0, len(records))
	for _, r := range records {
		borrowings = append(borrowings, BorrowingFromRecord(r))
	}

	return borrowings
}

// PaymentsFromRecords converts a list of stored payments.
func PaymentsFromRecords(records []rentalstore.Payment) []core.Payment {
	payments := make([]core.Payment, 0, len(records))
	for _, r := range records {
		payments = append(payments, PaymentFromRecord(r))
	}

	return payments
}

// MapStoreError translates "record not found" of the store into the domain's notFound error.
// All other errors pass unchanged, so observability can still classify conflicts, cancellations and timeouts.
func MapStoreError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, rentalstore.ErrNotFound) {
		return errors.Join(notFound, err)
	}

	return err
}

// MapGatewayError marks a failure of the checkout gateway as core.ErrUpstreamGateway.
func MapGatewayError(err error) error {
	if err == nil || errors.Is(err, core.ErrUpstreamGateway) {
		return err
	}

	return errors.Join(core.ErrUpstreamGateway, err)
}
