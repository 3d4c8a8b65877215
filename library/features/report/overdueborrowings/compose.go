package overdueborrowings

import (
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// Compose renders the notifications of one scan.
// This is a pure function with no side effects.
//
//	GIVEN: the active borrowings expected back by tomorrow
//	THEN: one overdue notification per borrowing, in the given order
//	OR: exactly one "nothing overdue" notification if there are none
func Compose(overdue []core.Borrowing) []string {
	if len(overdue) == 0 {
		return []string{core.MsgNothingOverdue}
	}

	messages := make([]string, 0, len(overdue))
	for _, borrowing := range overdue {
		messages = append(messages, core.BorrowingOverdueNotification(borrowing))
	}

	return messages
}
