package reissuepaymentsession

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

const (
	commandType = "ReissuePaymentSession"
)

// Command represents the intent to get a fresh checkout session for the rental fee of a borrowing.
type Command struct {
	BorrowingID uuid.UUID
	Caller      core.Caller
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(borrowingID uuid.UUID, caller core.Caller) Command {
	return Command{
		BorrowingID: borrowingID,
		Caller:      caller,
	}
}
