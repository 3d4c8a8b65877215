package overdueborrowings

import (
	"context"

	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// Store defines the interface needed by the CommandHandler for store operations.
type Store interface {
	ListBorrowings(ctx context.Context, filter rentalstore.BorrowingFilter) ([]rentalstore.Borrowing, error)
}

// Notifier delivers side-channel messages, it never fails.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Result carries what one scan reported.
type Result struct {
	shell.HandlerResult
	Overdue  int
	Messages []string
}

// CommandHandler runs the scan: Select -> Compose -> Notify.
type CommandHandler struct {
	store    Store
	notifier Notifier
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(store Store, notifier Notifier) CommandHandler {
	return CommandHandler{
		store:    store,
		notifier: notifier,
	}
}

// Handle executes the command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	filter := rentalstore.BuildBorrowingFilter().
		OnlyActive().
		DueBy(command.DueBy()).
		Finalize()

	records, err := h.store.ListBorrowings(ctx, filter)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult()}, err
	}

	messages := Compose(shell.BorrowingsFromRecords(records))
	for _, message := range messages {
		h.notifier.Notify(ctx, message)
	}

	return Result{
		HandlerResult: shell.NewSuccessResult(),
		Overdue:       len(records),
		Messages:      messages,
	}, nil
}
