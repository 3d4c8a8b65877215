package expirepaymentsessions

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// Store defines the interface needed by the CommandHandler for store operations.
type Store interface {
	RunInTx(ctx context.Context, fn rentalstore.TxFunc) error
	ListPayments(ctx context.Context, filter rentalstore.PaymentFilter) ([]rentalstore.Payment, error)
}

// CheckoutGateway reports the state of hosted payment sessions.
type CheckoutGateway interface {
	RetrieveSession(ctx context.Context, sessionID string) (core.CheckoutSession, error)
}

// Result counts what one run did.
type Result struct {
	shell.HandlerResult
	Checked int
	Expired int
	Skipped int
	Failed  int
}

// CommandHandler runs the expiry job: List -> per payment: Ask gateway -> Decide -> Apply.
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
// Gateway failures are joined into the returned error together with a Result of the partial run.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	records, err := h.store.ListPayments(
		rentalstore.WithStrongConsistency(ctx),
		rentalstore.BuildPaymentFilter().WithAnyStatusOf(rentalstore.PaymentStatusPending).Finalize(),
	)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult()}, err
	}

	var result Result
	var gatewayErrs []error

	for _, record := range records {
		if err = ctx.Err(); err != nil {
			return result, err
		}

		result.Checked++
		payment := shell.PaymentFromRecord(record)

		session, retrieveErr := h.gateway.RetrieveSession(ctx, payment.SessionID)
		if retrieveErr != nil {
			result.Failed++
			gatewayErrs = append(gatewayErrs, shell.MapGatewayError(retrieveErr))
			continue
		}

		decision := Decide(State{Payment: payment, Session: session}, command)
		if !decision.HasEffectToApply() {
			continue
		}

		err = h.store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
			payment.Status = decision.Effect.NewStatus
			return tx.UpdatePayment(ctx, shell.PaymentToRecord(payment), rentalstore.PaymentStatusPending)
		})

		switch {
		case err == nil:
			result.Expired++
		case errors.Is(err, rentalstore.ErrConcurrencyConflict):
			result.Skipped++
		default:
			return result, err
		}
	}

	result.HandlerResult = shell.NewSuccessResult()
	if result.Expired == 0 {
		result.HandlerResult = shell.NewIdempotentResult()
	}

	if len(gatewayErrs) > 0 {
		return result, errors.Join(gatewayErrs...)
	}

	return result, nil
}
