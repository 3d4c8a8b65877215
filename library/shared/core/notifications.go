package core

import (
	"fmt"
	"strings"
)

// Texts surfaced to callers and sent to the notification sinks.
const (
	MsgBorrowingCreated   = "New borrowing created:\n"
	MsgPaymentSucceeded   = "Payment has been made successfully\n"
	MsgBorrowingOverdue   = "Borrowing is overdue:\n"
	MsgNothingOverdue     = "No borrowings overdue today!"
	MsgBorrowingReturned  = "borrowing returned"
	MsgReturnOverdue      = "Your return is overdue please provide Fine payment"
	MsgSessionUpdated     = "Session url has been updated"
	MsgSessionStillActive = "Session url is still active"
	MsgPaymentConfirmed   = "Payment has been made successfully"
	MsgPaymentCanceled    = "You can make a payment during the next 24 hours."
)

// BorrowingInfo renders the multi-line description of a borrowing used in notifications.
func BorrowingInfo(b Borrowing) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "id: %s\n", b.ID)
	fmt.Fprintf(&sb, "Borrow date: %s\n", FormatDate(b.BorrowDate))
	fmt.Fprintf(&sb, "Expected return date: %s\n", FormatDate(b.ExpectedReturnDate))
	fmt.Fprintf(&sb, "Book: %s\n", b.BookTitle)
	fmt.Fprintf(&sb, "User id: %s", b.UserID)

	return sb.String()
}

// PaymentInfo renders the multi-line description of a payment used in notifications.
func PaymentInfo(p Payment) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "id: %s\n", p.ID)
	fmt.Fprintf(&sb, "Type: %s\n", p.Type)
	fmt.Fprintf(&sb, "Borrowed book: %s\n", p.BookTitle)
	fmt.Fprintf(&sb, "Money paid: %s$\n", p.Amount.StringFixed(2))
	fmt.Fprintf(&sb, "User id: %s", p.UserID)

	return sb.String()
}

func BorrowingCreatedNotification(b Borrowing) string {
	return MsgBorrowingCreated + BorrowingInfo(b)
}

func PaymentSucceededNotification(p Payment) string {
	return MsgPaymentSucceeded + PaymentInfo(p)
}

func BorrowingOverdueNotification(b Borrowing) string {
	return MsgBorrowingOverdue + BorrowingInfo(b)
}
