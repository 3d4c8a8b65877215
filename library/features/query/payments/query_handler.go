package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

var ErrMissingSessionID = fmt.Errorf("%w: session_id is required", core.ErrValidation)

// Store defines the interface needed by the query handlers for store operations.
type Store interface {
	ListPayments(ctx context.Context, filter rentalstore.PaymentFilter) ([]rentalstore.Payment, error)
	PaymentByID(ctx context.Context, paymentID uuid.UUID) (rentalstore.Payment, error)
	PaymentBySession(ctx context.Context, sessionID string) (rentalstore.Payment, error)
}

// ListQueryHandler returns the payments visible to the caller.
type ListQueryHandler struct {
	store Store
}

// NewListQueryHandler creates a new ListQueryHandler.
func NewListQueryHandler(store Store) ListQueryHandler {
	return ListQueryHandler{store: store}
}

// Handle executes the query.
func (h ListQueryHandler) Handle(ctx context.Context, query ListQuery) (Payments, error) {
	filter, err := FilterFor(query.Caller)
	if err != nil {
		return Payments{}, err
	}

	records, err := h.store.ListPayments(rentalstore.WithEventualConsistency(ctx), filter)
	if err != nil {
		return Payments{}, err
	}

	return ProjectPayments(shell.PaymentsFromRecords(records)), nil
}

// FilterFor restricts a non-privileged caller to payments of their own borrowings.
func FilterFor(caller core.Caller) (rentalstore.PaymentFilter, error) {
	if caller.Privileged {
		return rentalstore.BuildPaymentFilter().Finalize(), nil
	}

	if caller.IsAnonymous() {
		return rentalstore.PaymentFilter{}, core.ErrUnauthenticated
	}

	return rentalstore.BuildPaymentFilter().OwnedByAnyOf(caller.UserID).Finalize(), nil
}

// RetrieveQueryHandler returns one payment of the caller.
type RetrieveQueryHandler struct {
	store Store
}

// NewRetrieveQueryHandler creates a new RetrieveQueryHandler.
func NewRetrieveQueryHandler(store Store) RetrieveQueryHandler {
	return RetrieveQueryHandler{store: store}
}

// Handle executes the query.
func (h RetrieveQueryHandler) Handle(ctx context.Context, query RetrieveQuery) (PaymentView, error) {
	record, err := h.store.PaymentByID(rentalstore.WithEventualConsistency(ctx), query.PaymentID)
	if err != nil {
		return PaymentView{}, shell.MapStoreError(err, core.ErrPaymentNotFound)
	}

	payment := shell.PaymentFromRecord(record)
	if !query.Caller.CanAccess(payment.UserID) {
		return PaymentView{}, core.ErrPaymentNotFound
	}

	return ToPaymentView(payment), nil
}

// CancelQueryHandler answers the cancel callback without changing the payment.
type CancelQueryHandler struct {
	store Store
}

// NewCancelQueryHandler creates a new CancelQueryHandler.
func NewCancelQueryHandler(store Store) CancelQueryHandler {
	return CancelQueryHandler{store: store}
}

// Handle executes the query.
func (h CancelQueryHandler) Handle(ctx context.Context, query CancelQuery) (CallbackResult, error) {
	if query.SessionID == "" {
		return CallbackResult{}, ErrMissingSessionID
	}

	record, err := h.store.PaymentBySession(ctx, query.SessionID)
	if err != nil {
		return CallbackResult{}, shell.MapStoreError(err, core.ErrPaymentNotFound)
	}

	return CallbackResult{
		Payment: ToPaymentView(shell.PaymentFromRecord(record)),
		Message: core.MsgPaymentCanceled,
	}, nil
}
