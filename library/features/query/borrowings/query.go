package borrowings

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

const (
	listQueryType     = "ListBorrowings"
	retrieveQueryType = "RetrieveBorrowing"
)

// ListQuery asks for the borrowings visible to the caller.
// A nil IsActive means both active and returned borrowings.
type ListQuery struct {
	Caller   core.Caller
	UserIDs  []uuid.UUID
	IsActive *bool
}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q ListQuery) QueryType() string {
	return listQueryType
}

// BuildListQuery creates a new ListQuery.
func BuildListQuery(caller core.Caller, userIDs []uuid.UUID, isActive *bool) ListQuery {
	return ListQuery{Caller: caller, UserIDs: userIDs, IsActive: isActive}
}

// RetrieveQuery asks for one borrowing with its payments.
type RetrieveQuery struct {
	Caller      core.Caller
	BorrowingID uuid.UUID
}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q RetrieveQuery) QueryType() string {
	return retrieveQueryType
}

// BuildRetrieveQuery creates a new RetrieveQuery.
func BuildRetrieveQuery(caller core.Caller, borrowingID uuid.UUID) RetrieveQuery {
	return RetrieveQuery{Caller: caller, BorrowingID: borrowingID}
}
