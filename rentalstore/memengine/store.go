package memengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

const (
	logMsgTxRolledBack = "memengine transaction rolled back"
	logMsgTxCommitted  = "memengine transaction committed"
	logMsgBookDeleted  = "memengine book deleted with cascade"
	logAttrError       = "error"
	logAttrBookID      = "book_id"
	logAttrBorrowings  = "borrowings_deleted"
	logAttrPayments    = "payments_deleted"
)

// Store keeps books, borrowings and payments in memory.
type Store struct {
	mu         sync.Mutex
	books      map[uuid.UUID]rentalstore.Book
	borrowings map[uuid.UUID]rentalstore.Borrowing
	payments   map[uuid.UUID]rentalstore.Payment
	logger     rentalstore.Logger
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
func WithLogger(logger rentalstore.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStore creates an empty in-memory Store.
func NewStore(options ...Option) (*Store, error) {
	s := &Store{
		books:      make(map[uuid.UUID]rentalstore.Book),
		borrowings: make(map[uuid.UUID]rentalstore.Borrowing),
		payments:   make(map[uuid.UUID]rentalstore.Payment),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// RunInTx executes fn while holding the writer lock.
// All changes made through the Tx are discarded if fn returns an error or panics.
func (s *Store) RunInTx(ctx context.Context, fn rentalstore.TxFunc) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}

		if err != nil {
			s.restore(snapshot)
			s.logWarn(logMsgTxRolledBack, logAttrError, err.Error())
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	if err = fn(ctx, &memTx{store: s}); err != nil {
		return err
	}

	s.logDebug(logMsgTxCommitted)

	return nil
}

// InsertBook adds a book to the catalog.
func (s *Store) InsertBook(_ context.Context, book rentalstore.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[book.ID]; exists {
		return errors.Join(rentalstore.ErrDuplicateRecord, fmt.Errorf("book %s", book.ID))
	}

	s.books[book.ID] = book

	return nil
}

// DeleteBook removes a book together with its borrowings and their payments.
func (s *Store) DeleteBook(_ context.Context, bookID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[bookID]; !exists {
		return notFound("book", bookID.String())
	}

	deletedBorrowings, deletedPayments := 0, 0

	for borrowingID, borrowing := range s.borrowings {
		if borrowing.BookID != bookID {
			continue
		}

		for paymentID, payment := range s.payments {
			if payment.BorrowingID == borrowingID {
				delete(s.payments, paymentID)
				deletedPayments++
			}
		}

		delete(s.borrowings, borrowingID)
		deletedBorrowings++
	}

	delete(s.books, bookID)

	if s.logger != nil {
		s.logger.Info(logMsgBookDeleted,
			logAttrBookID, bookID.String(),
			logAttrBorrowings, deletedBorrowings,
			logAttrPayments, deletedPayments)
	}

	return nil
}

// BookByID returns one book.
func (s *Store) BookByID(_ context.Context, bookID uuid.UUID) (rentalstore.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, exists := s.books[bookID]
	if !exists {
		return rentalstore.Book{}, notFound("book", bookID.String())
	}

	return book, nil
}

// ListBooks returns all books ordered by title.
func (s *Store) ListBooks(_ context.Context) ([]rentalstore.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := make([]rentalstore.Book, 0, len(s.books))
	for _, book := range s.books {
		books = append(books, book)
	}

	slices.SortFunc(books, func(a, b rentalstore.Book) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}

		return compareIDs(a.ID, b.ID)
	})

	return books, nil
}

// BorrowingByID returns one borrowing.
func (s *Store) BorrowingByID(_ context.Context, borrowingID uuid.UUID) (rentalstore.Borrowing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.borrowing(borrowingID)
}

// ListBorrowings returns the borrowings matching the filter ordered by borrow date.
func (s *Store) ListBorrowings(_ context.Context, filter rentalstore.BorrowingFilter) ([]rentalstore.Borrowing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	borrowings := make([]rentalstore.Borrowing, 0)
	for id := range s.borrowings {
		borrowing, _ := s.borrowing(id)
		if filter.Matches(borrowing) {
			borrowings = append(borrowings, borrowing)
		}
	}

	slices.SortFunc(borrowings, func(a, b rentalstore.Borrowing) int {
		if c := a.BorrowDate.Compare(b.BorrowDate); c != 0 {
			return c
		}

		return compareIDs(a.ID, b.ID)
	})

	return borrowings, nil
}

// PaymentByID returns one payment.
func (s *Store) PaymentByID(_ context.Context, paymentID uuid.UUID) (rentalstore.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.payment(paymentID)
}

// PaymentBySession returns the payment mirroring the given checkout session.
func (s *Store) PaymentBySession(_ context.Context, sessionID string) (rentalstore.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.paymentBySession(sessionID)
}

// ListPayments returns the payments matching the filter ordered by id.
func (s *Store) ListPayments(_ context.Context, filter rentalstore.PaymentFilter) ([]rentalstore.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments := make([]rentalstore.Payment, 0)
	for id := range s.payments {
		payment, _ := s.payment(id)
		if filter.Matches(payment) {
			payments = append(payments, payment)
		}
	}

	slices.SortFunc(payments, func(a, b rentalstore.Payment) int {
		return compareIDs(a.ID, b.ID)
	})

	return payments, nil
}

/*** unlocked helpers, the caller holds s.mu ***/

func (s *Store) borrowing(borrowingID uuid.UUID) (rentalstore.Borrowing, error) {
	borrowing, exists := s.borrowings[borrowingID]
	if !exists {
		return rentalstore.Borrowing{}, notFound("borrowing", borrowingID.String())
	}

	borrowing.BookTitle = s.books[borrowing.BookID].Title
	if borrowing.ActualReturnDate != nil {
		returned := *borrowing.ActualReturnDate
		borrowing.ActualReturnDate = &returned
	}

	return borrowing, nil
}

func (s *Store) payment(paymentID uuid.UUID) (rentalstore.Payment, error) {
	payment, exists := s.payments[paymentID]
	if !exists {
		return rentalstore.Payment{}, notFound("payment", paymentID.String())
	}

	borrowing := s.borrowings[payment.BorrowingID]
	payment.UserID = borrowing.UserID
	payment.BookTitle = s.books[borrowing.BookID].Title

	return payment, nil
}

func (s *Store) paymentBySession(sessionID string) (rentalstore.Payment, error) {
	for id, payment := range s.payments {
		if payment.SessionID == sessionID && sessionID != "" {
			return s.payment(id)
		}
	}

	return rentalstore.Payment{}, notFound("payment with session", sessionID)
}

type state struct {
	books      map[uuid.UUID]rentalstore.Book
	borrowings map[uuid.UUID]rentalstore.Borrowing
	payments   map[uuid.UUID]rentalstore.Payment
}

func (s *Store) snapshot() state {
	borrowings := make(map[uuid.UUID]rentalstore.Borrowing, len(s.borrowings))
	for id, borrowing := range s.borrowings {
		if borrowing.ActualReturnDate != nil {
			returned := *borrowing.ActualReturnDate
			borrowing.ActualReturnDate = &returned
		}
		borrowings[id] = borrowing
	}

	books := make(map[uuid.UUID]rentalstore.Book, len(s.books))
	for id, book := range s.books {
		books[id] = book
	}

	payments := make(map[uuid.UUID]rentalstore.Payment, len(s.payments))
	for id, payment := range s.payments {
		payments[id] = payment
	}

	return state{books: books, borrowings: borrowings, payments: payments}
}

func (s *Store) restore(snapshot state) {
	s.books = snapshot.books
	s.borrowings = snapshot.borrowings
	s.payments = snapshot.payments
}

func (s *Store) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func notFound(kind, id string) error {
	return errors.Join(rentalstore.ErrNotFound, fmt.Errorf("%s %s", kind, id))
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
