package books

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// Store defines the interface needed by the query handlers for store operations.
type Store interface {
	ListBooks(ctx context.Context) ([]rentalstore.Book, error)
	BookByID(ctx context.Context, bookID uuid.UUID) (rentalstore.Book, error)
}

// ListQueryHandler returns the catalog ordered by title.
type ListQueryHandler struct {
	store Store
}

// NewListQueryHandler creates a new ListQueryHandler.
func NewListQueryHandler(store Store) ListQueryHandler {
	return ListQueryHandler{store: store}
}

// Handle executes the query.
func (h ListQueryHandler) Handle(ctx context.Context, _ ListQuery) (Books, error) {
	records, err := h.store.ListBooks(rentalstore.WithEventualConsistency(ctx))
	if err != nil {
		return Books{}, err
	}

	return ProjectBooks(shell.BooksFromRecords(records)), nil
}

// RetrieveQueryHandler returns one book.
type RetrieveQueryHandler struct {
	store Store
}

// NewRetrieveQueryHandler creates a new RetrieveQueryHandler.
func NewRetrieveQueryHandler(store Store) RetrieveQueryHandler {
	return RetrieveQueryHandler{store: store}
}

// Handle executes the query.
func (h RetrieveQueryHandler) Handle(ctx context.Context, query RetrieveQuery) (BookView, error) {
	record, err := h.store.BookByID(rentalstore.WithEventualConsistency(ctx), query.BookID)
	if err != nil {
		return BookView{}, shell.MapStoreError(err, core.ErrBookNotFound)
	}

	return ToBookView(shell.BookFromRecord(record)), nil
}
