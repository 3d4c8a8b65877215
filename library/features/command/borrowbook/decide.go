package borrowbook

import (
	"fmt"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

var ErrBorrowingIDTaken = fmt.Errorf("%w: borrowing id is already used for another borrowing", core.ErrValidation)

// State is what Decide needs to know, loaded under lock by the CommandHandler.
type State struct {
	Book            core.Book
	PendingPayments int

	// Existing is set if a borrowing with the command's id is already stored.
	Existing *core.Borrowing
}

// Effect describes the changes the CommandHandler has to apply.
type Effect struct {
	Borrowing    core.Borrowing
	NewInventory int
	Charge       core.Charge
}

// Decide implements the business rules for borrowing a book.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book with BookID and a user with UserID
//	WHEN: BorrowBook command is received
//	THEN: a Borrowing is created, the inventory decremented and the rental fee charged
//	ERROR: validation error if the expected return date lies before today
//	ERROR: out of stock if the inventory of the book is 0
//	ERROR: unpaid balance if the user has any PENDING payment
//	IDEMPOTENCY: If the borrowing already exists for this user and book, nothing changes (no-op)
func Decide(s State, command Command) core.DecisionResult[Effect] {
	if s.Existing != nil {
		if s.Existing.UserID == command.UserID && s.Existing.BookID == command.BookID {
			return core.IdempotentDecision[Effect]()
		}

		return core.ErrorDecision[Effect](ErrBorrowingIDTaken)
	}

	if command.ExpectedReturnDate.Before(command.Today) {
		return core.ErrorDecision[Effect](core.ErrExpectedReturnDateInPast)
	}

	if !s.Book.InStock() {
		return core.ErrorDecision[Effect](core.ErrOutOfStock)
	}

	if s.PendingPayments > 0 {
		return core.ErrorDecision[Effect](core.ErrUnpaidBalance)
	}

	borrowing := core.Borrowing{
		ID:                 command.BorrowingID,
		BorrowDate:         command.Today,
		ExpectedReturnDate: command.ExpectedReturnDate,
		BookID:             s.Book.ID,
		UserID:             command.UserID,
		BookTitle:          s.Book.Title,
	}

	return core.SuccessDecision(Effect{
		Borrowing:    borrowing,
		NewInventory: s.Book.Inventory - 1,
		Charge:       core.RentalCharge(s.Book, borrowing),
	})
}
