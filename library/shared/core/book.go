package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CoverFormat is the physical format of a book.
type CoverFormat string

const (
	CoverHard CoverFormat = "HARD"
	CoverSoft CoverFormat = "SOFT"
)

// Book is a catalog title with its stock count and rental fee per day.
type Book struct {
	ID        uuid.UUID
	Title     string
	Author    string
	Cover     CoverFormat
	Inventory int
	DailyFee  decimal.Decimal
}

// InStock reports whether at least one copy can be lent.
func (b Book) InStock() bool {
	return b.Inventory > 0
}
