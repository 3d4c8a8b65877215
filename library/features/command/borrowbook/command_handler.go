package borrowbook

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

// Notifier delivers side-channel messages, it never fails.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Result carries the borrowing and its PAYMENT-type payment.
type Result struct {
	shell.HandlerResult
	Borrowing core.Borrowing
	Payment   core.Payment
}

// CommandHandler orchestrates the Borrow Book workflow: Lock -> Decide -> Apply -> Notify.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	store    Store
	gateway  CheckoutGateway
	notifier Notifier
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(store Store, gateway CheckoutGateway, notifier Notifier) CommandHandler {
	return CommandHandler{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
	}
}

// Handle executes the command. Errors of Decide are returned unchanged, store and gateway
// errors are mapped into the domain taxonomy.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var result Result
	var created bool

	err := h.store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
		var txErr error
		result, created, txErr = h.execute(ctx, tx, command)
		return txErr
	})
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult()}, err
	}

	if !created {
		result.HandlerResult = shell.NewIdempotentResult()
		return result, nil
	}

	h.notifier.Notify(ctx, core.BorrowingCreatedNotification(result.Borrowing))

	result.HandlerResult = shell.NewSuccessResult()

	return result, nil
}

func (h CommandHandler) execute(ctx context.Context, tx rentalstore.Tx, command Command) (Result, bool, error) {
	if err := tx.LockUser(ctx, command.UserID); err != nil {
		return Result{}, false, err
	}

	state, err := h.loadState(ctx, tx, command)
	if err != nil {
		return Result{}, false, err
	}

	decision := Decide(state, command)

	if decisionErr := decision.HasError(); decisionErr != nil {
		return Result{}, false, decisionErr
	}

	if decision.IsIdempotent() {
		return h.existingResult(ctx, tx, *state.Existing)
	}

	effect := decision.Effect

	if err = tx.SetBookInventory(ctx, effect.Borrowing.BookID, effect.NewInventory); err != nil {
		return Result{}, false, shell.MapStoreError(err, core.ErrBookNotFound)
	}

	if err = tx.InsertBorrowing(ctx, shell.BorrowingToRecord(effect.Borrowing)); err != nil {
		return Result{}, false, err
	}

	session, err := h.gateway.CreateSession(ctx, effect.Charge)
	if err != nil {
		return Result{}, false, shell.MapGatewayError(err)
	}

	paymentID, err := uuid.NewV7()
	if err != nil {
		return Result{}, false, err
	}

	payment := core.Payment{
		ID:          paymentID,
		Status:      core.PaymentPending,
		Type:        core.PaymentTypePayment,
		BorrowingID: effect.Borrowing.ID,
		SessionID:   session.ID,
		SessionURL:  session.URL,
		Amount:      effect.Charge.Amount,
		UserID:      effect.Borrowing.UserID,
		BookTitle:   effect.Borrowing.BookTitle,
	}

	if err = tx.InsertPayment(ctx, shell.PaymentToRecord(payment)); err != nil {
		return Result{}, false, err
	}

	return Result{Borrowing: effect.Borrowing, Payment: payment}, true, nil
}

func (h CommandHandler) loadState(ctx context.Context, tx rentalstore.Tx, command Command) (State, error) {
	var state State

	existing, err := tx.LockBorrowing(ctx, command.BorrowingID)
	switch {
	case err == nil:
		borrowing := shell.BorrowingFromRecord(existing)
		state.Existing = &borrowing

		return state, nil
	case !errors.Is(err, rentalstore.ErrNotFound):
		return State{}, err
	}

	book, err := tx.LockBook(ctx, command.BookID)
	if err != nil {
		return State{}, shell.MapStoreError(err, core.ErrBookNotFound)
	}

	pending, err := tx.CountPendingPayments(ctx, command.UserID)
	if err != nil {
		return State{}, err
	}

	state.Book = shell.BookFromRecord(book)
	state.PendingPayments = pending

	return state, nil
}

func (h CommandHandler) existingResult(ctx context.Context, tx rentalstore.Tx, borrowing core.Borrowing) (Result, bool, error) {
	payment, err := tx.LockPaymentOfBorrowing(ctx, borrowing.ID, rentalstore.PaymentTypePayment)
	if err != nil {
		return Result{}, false, shell.MapStoreError(err, core.ErrPaymentNotFound)
	}

	return Result{Borrowing: borrowing, Payment: shell.PaymentFromRecord(payment)}, false, nil
}
