package returnborrowing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// Store defines the interface needed by the CommandHandler for store operations.
type Store interface {
	RunInTx(ctx context.Context, fn rentalstore.TxFunc) error
}

// CheckoutGateway opens hosted payment sessions.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, charge core.Charge) (core.CheckoutSession, error)
}

// Result carries the returned borrowing and, for an overdue return, the FINE payment.
type Result struct {
	shell.HandlerResult
	Borrowing core.Borrowing
	Fine      *core.Payment
}

// Message returns the acknowledgment shown to the caller.
func (r Result) Message() string {
	if r.Fine != nil {
		return core.MsgReturnOverdue
	}

	return core.MsgBorrowingReturned
}

// CommandHandler orchestrates the Return Borrowing workflow: Lock -> Decide -> Apply.
type CommandHandler struct {
	store   Store
	gateway CheckoutGateway
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(store Store, gateway CheckoutGateway) CommandHandler {
	return CommandHandler{
		store:   store,
		gateway: gateway,
	}
}

// Handle executes the command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var result Result

	err := h.store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
		var txErr error
		result, txErr = h.execute(ctx, tx, command)
		return txErr
	})
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult()}, err
	}

	result.HandlerResult = shell.NewSuccessResult()

	return result, nil
}

func (h CommandHandler) execute(ctx context.Context, tx rentalstore.Tx, command Command) (Result, error) {
	record, err := tx.LockBorrowing(ctx, command.BorrowingID)
	if err != nil {
		return Result{}, shell.MapStoreError(err, core.ErrBorrowingNotFound)
	}

	book, err := tx.LockBook(ctx, record.BookID)
	if err != nil {
		return Result{}, shell.MapStoreError(err, core.ErrBookNotFound)
	}

	borrowing := shell.BorrowingFromRecord(record)

	decision := Decide(State{Borrowing: borrowing, Book: shell.BookFromRecord(book)}, command)
	if decisionErr := decision.HasError(); decisionErr != nil {
		return Result{}, decisionErr
	}

	effect := decision.Effect

	if err = tx.SetActualReturnDate(ctx, borrowing.ID, effect.ReturnDate); err != nil {
		if errors.Is(err, rentalstore.ErrConcurrencyConflict) {
			return Result{}, errors.Join(core.ErrAlreadyReturned, err)
		}

		return Result{}, err
	}

	if err = tx.SetBookInventory(ctx, borrowing.BookID, effect.NewInventory); err != nil {
		return Result{}, err
	}

	returnDate := effect.ReturnDate
	borrowing.ActualReturnDate = &returnDate

	result := Result{Borrowing: borrowing}

	if effect.Fine == nil {
		return result, nil
	}

	fine, err := h.chargeFine(ctx, tx, borrowing, *effect.Fine)
	if err != nil {
		return Result{}, err
	}

	result.Fine = &fine

	return result, nil
}

func (h CommandHandler) chargeFine(
	ctx context.Context,
	tx rentalstore.Tx,
	borrowing core.Borrowing,
	charge core.Charge,
) (core.Payment, error) {

	session, err := h.gateway.CreateSession(ctx, charge)
	if err != nil {
		return core.Payment{}, shell.MapGatewayError(err)
	}

	paymentID, err := uuid.NewV7()
	if err != nil {
		return core.Payment{}, err
	}

	fine := core.Payment{
		ID:          paymentID,
		Status:      core.PaymentPending,
		Type:        core.PaymentTypeFine,
		BorrowingID: borrowing.ID,
		SessionID:   session.ID,
		SessionURL:  session.URL,
		Amount:      charge.Amount,
		UserID:      borrowing.UserID,
		BookTitle:   borrowing.BookTitle,
	}

	if err = tx.InsertPayment(ctx, shell.PaymentToRecord(fine)); err != nil {
		return core.Payment{}, err
	}

	return fine, nil
}
