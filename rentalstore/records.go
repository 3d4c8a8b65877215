package rentalstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stored values of the enumerated columns.
const (
	CoverHard = "HARD"
	CoverSoft = "SOFT"

	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusExpired = "EXPIRED"

	PaymentTypePayment = "PAYMENT"
	PaymentTypeFine    = "FINE"
)

// Book is the persisted form of a catalog title with its stock count and rental fee.
type Book struct {
	ID        uuid.UUID
	Title     string
	Author    string
	Cover     string
	Inventory int
	DailyFee  decimal.Decimal
}

// Borrowing is the persisted form of one user renting one book.
// BookTitle is read-only: it is filled from the owning book when reading and ignored when writing.
type Borrowing struct {
	ID                 uuid.UUID
	BorrowDate         time.Time
	ExpectedReturnDate time.Time
	ActualReturnDate   *time.Time
	BookID             uuid.UUID
	UserID             uuid.UUID
	BookTitle          string
}

// IsActive reports whether the borrowing has not been returned yet.
func (b Borrowing) IsActive() bool {
	return b.ActualReturnDate == nil
}

// Payment is the persisted form of a money obligation tied to a borrowing.
// UserID and BookTitle are read-only: they are filled from the owning borrowing when reading.
type Payment struct {
	ID          uuid.UUID
	Status      string
	Type        string
	BorrowingID uuid.UUID
	SessionID   string
	SessionURL  string
	Amount      decimal.Decimal
	UserID      uuid.UUID
	BookTitle   string
}
