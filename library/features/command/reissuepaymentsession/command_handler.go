package reissuepaymentsession

import (
	"context"

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

// Result carries the payment after the command.
type Result struct {
	shell.HandlerResult
	Payment core.Payment
}

// Message returns the acknowledgment shown to the caller.
func (r Result) Message() string {
	if r.Idempotent {
		return core.MsgSessionStillActive
	}

	return core.MsgSessionUpdated
}

// CommandHandler orchestrates the Reissue Payment Session workflow: Lock -> Decide -> Apply.
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

	return result, nil
}

func (h CommandHandler) execute(ctx context.Context, tx rentalstore.Tx, command Command) (Result, error) {
	record, err := tx.LockPaymentOfBorrowing(ctx, command.BorrowingID, rentalstore.PaymentTypePayment)
	if err != nil {
		return Result{}, shell.MapStoreError(err, core.ErrPaymentNotFound)
	}

	payment := shell.PaymentFromRecord(record)

	decision := Decide(State{Payment: payment}, command)
	if decisionErr := decision.HasError(); decisionErr != nil {
		return Result{}, decisionErr
	}

	if decision.IsIdempotent() {
		return Result{HandlerResult: shell.NewIdempotentResult(), Payment: payment}, nil
	}

	session, err := h.gateway.CreateSession(ctx, decision.Effect.Charge)
	if err != nil {
		return Result{}, shell.MapGatewayError(err)
	}

	payment.SessionID = session.ID
	payment.SessionURL = session.URL
	payment.Status = core.PaymentPending

	if err = tx.UpdatePayment(ctx, shell.PaymentToRecord(payment), rentalstore.PaymentStatusExpired); err != nil {
		return Result{}, err
	}

	return Result{HandlerResult: shell.NewSuccessResult(), Payment: payment}, nil
}
