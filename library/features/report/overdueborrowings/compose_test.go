package overdueborrowings_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/library/features/report/overdueborrowings"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

func Test_Compose_NothingOverdue(t *testing.T) {
	assert.Equal(t, []string{core.MsgNothingOverdue}, overdueborrowings.Compose(nil))
}

func Test_Compose_OneMessagePerBorrowing(t *testing.T) {
	// arrange
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	overdue := []core.Borrowing{
		{ID: uuid.New(), BorrowDate: day, ExpectedReturnDate: day.AddDate(0, 0, 1), BookTitle: "Dune", UserID: uuid.New()},
		{ID: uuid.New(), BorrowDate: day, ExpectedReturnDate: day, BookTitle: "Emma", UserID: uuid.New()},
	}

	// act
	messages := overdueborrowings.Compose(overdue)

	// assert
	require.Len(t, messages, 2)
	assert.True(t, strings.HasPrefix(messages[0], core.MsgBorrowingOverdue))
	assert.Contains(t, messages[0], "Book: Dune")
	assert.Contains(t, messages[0], "Expected return date: 2025-03-11")
	assert.Contains(t, messages[1], "Book: Emma")
}
