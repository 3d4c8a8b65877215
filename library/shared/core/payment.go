package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a Payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentExpired PaymentStatus = "EXPIRED"
)

// PaymentType tells a rental fee from a fine.
type PaymentType string

const (
	PaymentTypePayment PaymentType = "PAYMENT"
	PaymentTypeFine    PaymentType = "FINE"
)

// Payment is a money obligation tied to a borrowing, mirroring an external checkout session.
// UserID and BookTitle are derived from the owning borrowing.
type Payment struct {
	ID          uuid.UUID
	Status      PaymentStatus
	Type        PaymentType
	BorrowingID uuid.UUID
	SessionID   string
	SessionURL  string
	Amount      decimal.Decimal
	UserID      uuid.UUID
	BookTitle   string
}

func (p Payment) IsPending() bool {
	return p.Status == PaymentPending
}

func (p Payment) IsPaid() bool {
	return p.Status == PaymentPaid
}

func (p Payment) IsExpired() bool {
	return p.Status == PaymentExpired
}

// CheckoutSession is the state of a hosted payment flow as reported by the checkout gateway.
type CheckoutSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
}

// Values reported by the checkout gateway.
const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"

	SessionPaymentPaid   = "paid"
	SessionPaymentUnpaid = "unpaid"
)

// IsPaid reports whether the gateway confirmed the payment.
func (s CheckoutSession) IsPaid() bool {
	return s.PaymentStatus == SessionPaymentPaid
}

// IsExpired reports whether the session lapsed without payment.
func (s CheckoutSession) IsExpired() bool {
	return s.Status == SessionStatusExpired
}
