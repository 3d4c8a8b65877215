package returnborrowing

import (
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// State is what Decide needs to know, loaded under lock by the CommandHandler.
type State struct {
	Borrowing core.Borrowing
	Book      core.Book
}

// Effect describes the changes the CommandHandler has to apply.
type Effect struct {
	ReturnDate   core.Date
	NewInventory int
	OverdueDays  int

	// Fine is nil if the book came back in time.
	Fine *core.Charge
}

// Decide implements the business rules for returning a borrowed book.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: An active borrowing of the caller
//	WHEN: ReturnBorrowing command is received
//	THEN: the borrowing is returned today and the inventory incremented
//	AND: a FINE of dailyFee × overdueDays × 2 is charged if today is after the expected return date
//	ERROR: not found if the borrowing belongs to another user and the caller is not privileged
//	ERROR: already returned if the actual return date is set
func Decide(s State, command Command) core.DecisionResult[Effect] {
	if !command.Caller.CanAccess(s.Borrowing.UserID) {
		return core.ErrorDecision[Effect](core.ErrBorrowingNotFound)
	}

	if !s.Borrowing.IsActive() {
		return core.ErrorDecision[Effect](core.ErrAlreadyReturned)
	}

	effect := Effect{
		ReturnDate:   command.Today,
		NewInventory: s.Book.Inventory + 1,
		OverdueDays:  s.Borrowing.OverdueDaysOn(command.Today),
	}

	if effect.OverdueDays > 0 {
		fine := core.FineCharge(s.Book, effect.OverdueDays)
		effect.Fine = &fine
	}

	return core.SuccessDecision(effect)
}
