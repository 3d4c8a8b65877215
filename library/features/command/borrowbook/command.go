package borrowbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

const (
	commandType = "BorrowBook"
)

// Command represents the intent of a user to borrow a book.
type Command struct {
	BorrowingID        uuid.UUID
	UserID             uuid.UUID
	BookID             uuid.UUID
	ExpectedReturnDate core.Date
	Today              core.Date
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command, normalizing both dates to calendar days.
func BuildCommand(
	borrowingID uuid.UUID,
	userID uuid.UUID,
	bookID uuid.UUID,
	expectedReturnDate time.Time,
	now time.Time,
) Command {

	return Command{
		BorrowingID:        borrowingID,
		UserID:             userID,
		BookID:             bookID,
		ExpectedReturnDate: core.ToDate(expectedReturnDate),
		Today:              core.ToDate(now),
	}
}
