package expirepaymentsessions

import (
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// State is one payment and its session as reported by the checkout gateway.
type State struct {
	Payment core.Payment
	Session core.CheckoutSession
}

// Effect is the status the payment moves to.
type Effect struct {
	NewStatus core.PaymentStatus
}

// Decide implements the business rules for expiring one payment.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A PENDING payment
//	WHEN: the expiry job checks its session
//	THEN: the payment becomes EXPIRED if the gateway reports the session as expired
//	IDEMPOTENCY: A payment that is not PENDING, or whose session is still open, stays as it is
func Decide(s State, _ Command) core.DecisionResult[Effect] {
	if !s.Payment.IsPending() || !s.Session.IsExpired() {
		return core.IdempotentDecision[Effect]()
	}

	return core.SuccessDecision(Effect{NewStatus: core.PaymentExpired})
}
