package borrowings

import (
	"github.com/AntonStoeckl/book-rental-go/library/features/query/payments"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// ToBorrowingView projects a borrowing to its public representation.
func ToBorrowingView(borrowing core.Borrowing) BorrowingView {
	view := BorrowingView{
		ID:                 borrowing.ID.String(),
		BorrowDate:         core.FormatDate(borrowing.BorrowDate),
		ExpectedReturnDate: core.FormatDate(borrowing.ExpectedReturnDate),
		IsActive:           borrowing.IsActive(),
		BookID:             borrowing.BookID.String(),
		BookTitle:          borrowing.BookTitle,
		UserID:             borrowing.UserID.String(),
	}

	if borrowing.ActualReturnDate != nil {
		returned := core.FormatDate(*borrowing.ActualReturnDate)
		view.ActualReturnDate = &returned
	}

	return view
}

// ProjectBorrowings builds the list result, keeping the order of the input.
func ProjectBorrowings(borrowings []core.Borrowing) Borrowings {
	views := make([]BorrowingView, 0, len(borrowings))
	for _, borrowing := range borrowings {
		views = append(views, ToBorrowingView(borrowing))
	}

	return Borrowings{Borrowings: views, Count: len(views)}
}

// ProjectBorrowingDetail combines a borrowing with its payments.
func ProjectBorrowingDetail(borrowing core.Borrowing, borrowingPayments []core.Payment) BorrowingDetail {
	return BorrowingDetail{
		BorrowingView: ToBorrowingView(borrowing),
		Payments:      payments.ToPaymentViews(borrowingPayments),
	}
}
