package borrowings

import (
	"github.com/AntonStoeckl/book-rental-go/library/features/query/payments"
)

// BorrowingView is the public representation of a borrowing.
type BorrowingView struct {
	ID                 string  `json:"id"`
	BorrowDate         string  `json:"borrow_date"`
	ExpectedReturnDate string  `json:"expected_return_date"`
	ActualReturnDate   *string `json:"actual_return_date"`
	IsActive           bool    `json:"is_active"`
	BookID             string  `json:"book_id"`
	BookTitle          string  `json:"book_title"`
	UserID             string  `json:"user_id"`
}

// Borrowings is the result of the ListQuery.
type Borrowings struct {
	Borrowings []BorrowingView `json:"borrowings"`
	Count      int             `json:"count"`
}

// BorrowingDetail is the result of the RetrieveQuery.
type BorrowingDetail struct {
	BorrowingView
	Payments []payments.PaymentView `json:"payments"`
}
