package confirmpayment

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

var ErrMissingSessionID = fmt.Errorf("%w: session_id is required", core.ErrValidation)

// Store defines the interface needed by the CommandHandler for store operations.
type Store interface {
	RunInTx(ctx context.Context, fn rentalstore.TxFunc) error
}

// CheckoutGateway reports the state of hosted payment sessions.
type CheckoutGateway interface {
	RetrieveSession(ctx context.Context, sessionID string) (core.CheckoutSession, error)
}

// Notifier delivers side-channel messages, it never fails.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Result carries the payment after the command.
type Result struct {
	shell.HandlerResult
	Payment core.Payment
}

// CommandHandler orchestrates the Confirm Payment workflow: Lock -> Ask gateway -> Decide -> Apply -> Notify.
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

// Handle executes the command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if command.SessionID == "" {
		return Result{HandlerResult: shell.NewErrorResult()}, ErrMissingSessionID
	}

	var result Result

	err := h.store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
		var txErr error
		result, txErr = h.execute(ctx, tx, command)
		return txErr
	})
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult()}, err
	}

	if !result.Idempotent {
		h.notifier.Notify(ctx, core.PaymentSucceededNotification(result.Payment))
	}

	return result, nil
}

func (h CommandHandler) execute(ctx context.Context, tx rentalstore.Tx, command Command) (Result, error) {
	record, err := tx.LockPaymentBySession(ctx, command.SessionID)
	if err != nil {
		return Result{}, shell.MapStoreError(err, core.ErrPaymentNotFound)
	}

	payment := shell.PaymentFromRecord(record)

	if payment.IsPaid() {
		return Result{HandlerResult: shell.NewIdempotentResult(), Payment: payment}, nil
	}

	session, err := h.gateway.RetrieveSession(ctx, command.SessionID)
	if err != nil {
		return Result{}, shell.MapGatewayError(err)
	}

	decision := Decide(State{Payment: payment, Session: session}, command)
	if decisionErr := decision.HasError(); decisionErr != nil {
		return Result{}, decisionErr
	}

	previousStatus := record.Status
	payment.Status = decision.Effect.NewStatus

	if err = tx.UpdatePayment(ctx, shell.PaymentToRecord(payment), previousStatus); err != nil {
		return Result{}, err
	}

	return Result{HandlerResult: shell.NewSuccessResult(), Payment: payment}, nil
}
