package borrowings

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// Store defines the interface needed by the query handlers for store operations.
type Store interface {
	ListBorrowings(ctx context.Context, filter rentalstore.BorrowingFilter) ([]rentalstore.Borrowing, error)
	BorrowingByID(ctx context.Context, borrowingID uuid.UUID) (rentalstore.Borrowing, error)
	ListPayments(ctx context.Context, filter rentalstore.PaymentFilter) ([]rentalstore.Payment, error)
}

// ListQueryHandler returns the borrowings visible to the caller ordered by borrow date.
type ListQueryHandler struct {
	store Store
}

// NewListQueryHandler creates a new ListQueryHandler.
func NewListQueryHandler(store Store) ListQueryHandler {
	return ListQueryHandler{store: store}
}

// Handle executes the query.
func (h ListQueryHandler) Handle(ctx context.Context, query ListQuery) (Borrowings, error) {
	filter, err := BuildFilter(query)
	if err != nil {
		return Borrowings{}, err
	}

	records, err := h.store.ListBorrowings(rentalstore.WithEventualConsistency(ctx), filter)
	if err != nil {
		return Borrowings{}, err
	}

	return ProjectBorrowings(shell.BorrowingsFromRecords(records)), nil
}

// BuildFilter translates the query into a store filter.
// The user filter of a non-privileged caller is replaced by the caller's own id.
func BuildFilter(query ListQuery) (rentalstore.BorrowingFilter, error) {
	builder := rentalstore.BuildBorrowingFilter()

	switch {
	case query.Caller.Privileged:
		builder = builder.OwnedByAnyOf(query.UserIDs...)
	case query.Caller.IsAnonymous():
		return rentalstore.BorrowingFilter{}, core.ErrUnauthenticated
	default:
		builder = builder.OwnedByAnyOf(query.Caller.UserID)
	}

	if query.IsActive != nil {
		if *query.IsActive {
			builder = builder.OnlyActive()
		} else {
			builder = builder.OnlyReturned()
		}
	}

	return builder.Finalize(), nil
}

// RetrieveQueryHandler returns one borrowing of the caller with its payments.
type RetrieveQueryHandler struct {
	store Store
}

// NewRetrieveQueryHandler creates a new RetrieveQueryHandler.
func NewRetrieveQueryHandler(store Store) RetrieveQueryHandler {
	return RetrieveQueryHandler{store: store}
}

// Handle executes the query.
func (h RetrieveQueryHandler) Handle(ctx context.Context, query RetrieveQuery) (BorrowingDetail, error) {
	ctx = rentalstore.WithEventualConsistency(ctx)

	record, err := h.store.BorrowingByID(ctx, query.BorrowingID)
	if err != nil {
		return BorrowingDetail{}, shell.MapStoreError(err, core.ErrBorrowingNotFound)
	}

	borrowing := shell.BorrowingFromRecord(record)
	if !query.Caller.CanAccess(borrowing.UserID) {
		return BorrowingDetail{}, core.ErrBorrowingNotFound
	}

	paymentRecords, err := h.store.ListPayments(ctx,
		rentalstore.BuildPaymentFilter().OfAnyBorrowing(borrowing.ID).Finalize())
	if err != nil {
		return BorrowingDetail{}, err
	}

	return ProjectBorrowingDetail(borrowing, shell.PaymentsFromRecords(paymentRecords)), nil
}
