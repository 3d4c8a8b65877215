package reissuepaymentsession

import (
	"fmt"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// State is the PAYMENT-type payment of the borrowing, loaded under lock.
type State struct {
	Payment core.Payment
}

// Effect is the charge of the new session.
type Effect struct {
	Charge core.Charge
}

// Decide implements the business rules for reissuing an expired checkout session.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: The PAYMENT-type payment of a borrowing of the caller
//	WHEN: ReissuePaymentSession command is received
//	THEN: a new session for the same amount is opened if the payment is EXPIRED
//	ERROR: not found if the borrowing belongs to another user and the caller is not privileged
//	IDEMPOTENCY: If the payment is not EXPIRED, nothing changes (session still active)
func Decide(s State, command Command) core.DecisionResult[Effect] {
	if !command.Caller.CanAccess(s.Payment.UserID) {
		return core.ErrorDecision[Effect](core.ErrBorrowingNotFound)
	}

	if !s.Payment.IsExpired() {
		return core.IdempotentDecision[Effect]()
	}

	return core.SuccessDecision(Effect{
		Charge: core.Charge{
			Type:        s.Payment.Type,
			Amount:      s.Payment.Amount,
			Description: fmt.Sprintf("Payment for borrowing of %s", s.Payment.BookTitle),
		},
	})
}
