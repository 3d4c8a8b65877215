package returnborrowing

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

const (
	commandType = "ReturnBorrowing"
)

// Command represents the intent to return a borrowed book.
type Command struct {
	BorrowingID uuid.UUID
	Caller      core.Caller
	Today       core.Date
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(borrowingID uuid.UUID, caller core.Caller, now time.Time) Command {
	return Command{
		BorrowingID: borrowingID,
		Caller:      caller,
		Today:       core.ToDate(now),
	}
}
