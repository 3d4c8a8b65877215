package payments

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

const (
	listQueryType     = "ListPayments"
	retrieveQueryType = "RetrievePayment"
	cancelQueryType   = "CancelPayment"
)

// ListQuery asks for the payments visible to the caller.
type ListQuery struct {
	Caller core.Caller
}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q ListQuery) QueryType() string {
	return listQueryType
}

// BuildListQuery creates a new ListQuery.
func BuildListQuery(caller core.Caller) ListQuery {
	return ListQuery{Caller: caller}
}

// RetrieveQuery asks for one payment.
type RetrieveQuery struct {
	Caller    core.Caller
	PaymentID uuid.UUID
}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q RetrieveQuery) QueryType() string {
	return retrieveQueryType
}

// BuildRetrieveQuery creates a new RetrieveQuery.
func BuildRetrieveQuery(caller core.Caller, paymentID uuid.UUID) RetrieveQuery {
	return RetrieveQuery{Caller: caller, PaymentID: paymentID}
}

// CancelQuery is the cancel callback of the checkout provider for one session.
type CancelQuery struct {
	SessionID string
}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q CancelQuery) QueryType() string {
	return cancelQueryType
}

// BuildCancelQuery creates a new CancelQuery.
func BuildCancelQuery(sessionID string) CancelQuery {
	return CancelQuery{SessionID: sessionID}
}
