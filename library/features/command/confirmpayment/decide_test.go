package confirmpayment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/book-rental-go/library/features/command/confirmpayment"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

var (
	paidSession   = core.CheckoutSession{ID: "cs_1", Status: core.SessionStatusComplete, PaymentStatus: core.SessionPaymentPaid}
	unpaidSession = core.CheckoutSession{ID: "cs_1", Status: core.SessionStatusOpen, PaymentStatus: core.SessionPaymentUnpaid}
)

func Test_Decide(t *testing.T) {
	command := confirmpayment.BuildCommand("cs_1")

	testCases := []struct {
		name          string
		paymentStatus core.PaymentStatus
		session       core.CheckoutSession
		expectSuccess bool
		expectNoop    bool
		expectedErr   error
	}{
		{name: "pending and paid session", paymentStatus: core.PaymentPending, session: paidSession, expectSuccess: true},
		{name: "expired but paid session", paymentStatus: core.PaymentExpired, session: paidSession, expectSuccess: true},
		{name: "already paid", paymentStatus: core.PaymentPaid, session: unpaidSession, expectNoop: true},
		{name: "session not paid", paymentStatus: core.PaymentPending, session: unpaidSession, expectedErr: core.ErrPaymentNotConfirmed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			state := confirmpayment.State{Payment: core.Payment{Status: tc.paymentStatus}, Session: tc.session}

			// act
			decision := confirmpayment.Decide(state, command)

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, decision.HasError(), tc.expectedErr)
				assert.ErrorIs(t, decision.HasError(), core.ErrBusinessRuleViolation)
				return
			}

			assert.NoError(t, decision.HasError())
			assert.Equal(t, tc.expectSuccess, decision.HasEffectToApply())
			assert.Equal(t, tc.expectNoop, decision.IsIdempotent())

			if tc.expectSuccess {
				assert.Equal(t, core.PaymentPaid, decision.Effect.NewStatus)
			}
		})
	}
}
