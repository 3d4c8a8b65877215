package returnborrowing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/library/features/command/returnborrowing"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

var borrowDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func activeState(userID uuid.UUID) returnborrowing.State {
	book := core.Book{ID: uuid.New(), Title: "Dune", Inventory: 0, DailyFee: decimal.RequireFromString("25.00")}

	return returnborrowing.State{
		Book: book,
		Borrowing: core.Borrowing{
			ID:                 uuid.New(),
			BorrowDate:         borrowDay,
			ExpectedReturnDate: borrowDay.AddDate(0, 0, 7),
			BookID:             book.ID,
			UserID:             userID,
			BookTitle:          book.Title,
		},
	}
}

func Test_Decide_Success_InTime(t *testing.T) {
	// arrange
	userID := uuid.New()
	state := activeState(userID)
	command := returnborrowing.BuildCommand(state.Borrowing.ID, core.Caller{UserID: userID}, borrowDay.AddDate(0, 0, 7))

	// act
	result := returnborrowing.Decide(state, command)

	// assert
	require.True(t, result.HasEffectToApply())
	assert.Equal(t, 1, result.Effect.NewInventory)
	assert.Equal(t, borrowDay.AddDate(0, 0, 7), result.Effect.ReturnDate)
	assert.Zero(t, result.Effect.OverdueDays)
	assert.Nil(t, result.Effect.Fine)
}

func Test_Decide_Success_OverdueChargesDoubleFee(t *testing.T) {
	// arrange
	userID := uuid.New()
	state := activeState(userID)
	command := returnborrowing.BuildCommand(state.Borrowing.ID, core.Caller{UserID: userID}, borrowDay.AddDate(0, 0, 9))

	// act
	result := returnborrowing.Decide(state, command)

	// assert
	require.True(t, result.HasEffectToApply())
	assert.Equal(t, 2, result.Effect.OverdueDays)
	require.NotNil(t, result.Effect.Fine)
	assert.Equal(t, core.PaymentTypeFine, result.Effect.Fine.Type)
	assert.True(t, decimal.RequireFromString("100.00").Equal(result.Effect.Fine.Amount))
	assert.Equal(t, "Fine payment for Dune: 2 days overdue", result.Effect.Fine.Description)
}

func Test_Decide_Success_PrivilegedCallerReturnsForeignBorrowing(t *testing.T) {
	// arrange
	state := activeState(uuid.New())
	command := returnborrowing.BuildCommand(state.Borrowing.ID, core.Caller{UserID: uuid.New(), Privileged: true}, borrowDay)

	// act
	result := returnborrowing.Decide(state, command)

	// assert
	assert.True(t, result.HasEffectToApply())
}

func Test_Decide_Errors(t *testing.T) {
	owner := uuid.New()
	returned := borrowDay.AddDate(0, 0, 1)

	testCases := []struct {
		name        string
		caller      core.Caller
		returned    *core.Date
		expectedErr error
	}{
		{"foreign borrowing", core.Caller{UserID: uuid.New()}, nil, core.ErrBorrowingNotFound},
		{"anonymous caller", core.Caller{}, nil, core.ErrNotFound},
		{"already returned", core.Caller{UserID: owner}, &returned, core.ErrAlreadyReturned},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			state := activeState(owner)
			state.Borrowing.ActualReturnDate = tc.returned
			command := returnborrowing.BuildCommand(state.Borrowing.ID, tc.caller, borrowDay.AddDate(0, 0, 2))

			// act
			result := returnborrowing.Decide(state, command)

			// assert
			assert.False(t, result.HasEffectToApply())
			assert.ErrorIs(t, result.HasError(), tc.expectedErr)
		})
	}
}
