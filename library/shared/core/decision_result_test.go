package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

func Test_DecisionResult_Outcomes(t *testing.T) {
	idempotent := core.IdempotentDecision[int]()
	assert.True(t, idempotent.IsIdempotent())
	assert.False(t, idempotent.HasEffectToApply())
	assert.NoError(t, idempotent.HasError())

	success := core.SuccessDecision(42)
	assert.True(t, success.HasEffectToApply())
	assert.Equal(t, 42, success.Effect)
	assert.NoError(t, success.HasError())

	failed := core.ErrorDecision[int](core.ErrOutOfStock)
	assert.False(t, failed.HasEffectToApply())
	assert.False(t, failed.IsIdempotent())
	assert.ErrorIs(t, failed.HasError(), core.ErrBusinessRuleViolation)
}

func Test_Errors_BelongToTheirCategory(t *testing.T) {
	assert.ErrorIs(t, core.ErrExpectedReturnDateInPast, core.ErrValidation)
	assert.ErrorIs(t, core.ErrUnpaidBalance, core.ErrBusinessRuleViolation)
	assert.ErrorIs(t, core.ErrAlreadyReturned, core.ErrBusinessRuleViolation)
	assert.ErrorIs(t, core.ErrPaymentNotConfirmed, core.ErrBusinessRuleViolation)
	assert.ErrorIs(t, core.ErrBorrowingNotFound, core.ErrNotFound)
	assert.NotErrorIs(t, core.ErrOutOfStock, core.ErrValidation)
}
