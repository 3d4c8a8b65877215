package confirmpayment

import (
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// State is the payment of the session and the session as reported by the checkout gateway.
type State struct {
	Payment core.Payment
	Session core.CheckoutSession
}

// Effect is the status the payment moves to.
type Effect struct {
	NewStatus core.PaymentStatus
}

// Decide implements the business rules for confirming a payment.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A payment mirroring a checkout session
//	WHEN: ConfirmPayment command is received
//	THEN: the payment becomes PAID if the gateway reports the session as paid
//	ERROR: payment not confirmed if the session is not paid
//	IDEMPOTENCY: If the payment is already PAID, nothing changes (no-op)
func Decide(s State, _ Command) core.DecisionResult[Effect] {
	if s.Payment.IsPaid() {
		return core.IdempotentDecision[Effect]()
	}

	if !s.Session.IsPaid() {
		return core.ErrorDecision[Effect](core.ErrPaymentNotConfirmed)
	}

	return core.SuccessDecision(Effect{NewStatus: core.PaymentPaid})
}
