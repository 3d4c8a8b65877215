package books

import (
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// ToBookView projects a book to its public representation.
func ToBookView(book core.Book) BookView {
	return BookView{
		ID:        book.ID.String(),
		Title:     book.Title,
		Author:    book.Author,
		Cover:     string(book.Cover),
		Inventory: book.Inventory,
		DailyFee:  book.DailyFee.StringFixed(2),
	}
}

// ProjectBooks builds the list result, keeping the order of the input.
func ProjectBooks(books []core.Book) Books {
	views := make([]BookView, 0, len(books))
	for _, book := range books {
		views = append(views, ToBookView(book))
	}

	return Books{Books: views, Count: len(views)}
}
