package overdueborrowings

import (
	"time"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

const (
	commandType = "ScanOverdueBorrowings"
)

// Command triggers one scan for the given day.
type Command struct {
	Today core.Date
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command for the calendar day of now.
func BuildCommand(now time.Time) Command {
	return Command{Today: core.ToDate(now)}
}

// DueBy is the latest expected return date included in the report.
func (c Command) DueBy() core.Date {
	return c.Today.AddDate(0, 0, 1)
}
