package books

import (
	"github.com/google/uuid"
)

const (
	listQueryType     = "ListBooks"
	retrieveQueryType = "RetrieveBook"
)

// ListQuery asks for the whole catalog.
type ListQuery struct{}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q ListQuery) QueryType() string {
	return listQueryType
}

// BuildListQuery creates a new ListQuery.
func BuildListQuery() ListQuery {
	return ListQuery{}
}

// RetrieveQuery asks for one book.
type RetrieveQuery struct {
	BookID uuid.UUID
}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q RetrieveQuery) QueryType() string {
	return retrieveQueryType
}

// BuildRetrieveQuery creates a new RetrieveQuery.
func BuildRetrieveQuery(bookID uuid.UUID) RetrieveQuery {
	return RetrieveQuery{BookID: bookID}
}
