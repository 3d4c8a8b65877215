package payments

import (
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// ToPaymentView projects a payment to its public representation.
func ToPaymentView(payment core.Payment) PaymentView {
	return PaymentView{
		ID:          payment.ID.String(),
		Status:      string(payment.Status),
		Type:        string(payment.Type),
		BorrowingID: payment.BorrowingID.String(),
		BookTitle:   payment.BookTitle,
		SessionID:   payment.SessionID,
		SessionURL:  payment.SessionURL,
		MoneyToPay:  payment.Amount.StringFixed(2),
	}
}

// ToPaymentViews projects payments, keeping their order. The result is never nil.
func ToPaymentViews(payments []core.Payment) []PaymentView {
	views := make([]PaymentView, 0, len(payments))
	for _, payment := range payments {
		views = append(views, ToPaymentView(payment))
	}

	return views
}

// ProjectPayments builds the list result.
func ProjectPayments(payments []core.Payment) Payments {
	views := ToPaymentViews(payments)
	return Payments{Payments: views, Count: len(views)}
}
