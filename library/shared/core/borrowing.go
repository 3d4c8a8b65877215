package core

import (
	"github.com/google/uuid"
)

// Borrowing is one user renting one book for a date range.
type Borrowing struct {
	ID                 uuid.UUID
	BorrowDate         Date
	ExpectedReturnDate Date
	ActualReturnDate   *Date
	BookID             uuid.UUID
	UserID             uuid.UUID
	BookTitle          string
}

// IsActive reports whether the book was not returned yet.
func (b Borrowing) IsActive() bool {
	return b.ActualReturnDate == nil
}

// OverdueDaysOn returns how many days after the expected return date the given day lies, or 0.
func (b Borrowing) OverdueDaysOn(day Date) int {
	return max(0, DaysBetween(b.ExpectedReturnDate, day))
}

// RentalDays returns the number of days charged for the borrowing: at least one.
func (b Borrowing) RentalDays() int {
	return max(1, DaysBetween(b.BorrowDate, b.ExpectedReturnDate))
}
