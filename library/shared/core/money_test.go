package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

func Test_RentalAmount_ChargesEveryDay(t *testing.T) {
	// act
	amount := core.RentalAmount(decimal.RequireFromString("25.00"), 7)

	// assert
	assert.True(t, decimal.RequireFromString("175.00").Equal(amount), "got %s", amount)
}

func Test_RentalAmount_ChargesAtLeastOneDay(t *testing.T) {
	// act
	amount := core.RentalAmount(decimal.RequireFromString("3.50"), 0)

	// assert
	assert.True(t, decimal.RequireFromString("3.50").Equal(amount), "got %s", amount)
}

func Test_FineAmount_AppliesTheMultiplier(t *testing.T) {
	// act
	amount := core.FineAmount(decimal.RequireFromString("25.00"), 2)

	// assert
	assert.True(t, decimal.RequireFromString("100.00").Equal(amount), "got %s", amount)
}

func Test_ToMinorUnits_TruncatesFractionsOfACent(t *testing.T) {
	assert.Equal(t, int64(17500), core.ToMinorUnits(decimal.RequireFromString("175")))
	assert.Equal(t, int64(1234), core.ToMinorUnits(decimal.RequireFromString("12.349")))
	assert.Equal(t, int64(0), core.ToMinorUnits(decimal.Zero))
}

func Test_FromMinorUnits_RoundTrip(t *testing.T) {
	assert.Equal(t, "175.00", core.FromMinorUnits(17500).StringFixed(2))
}

func Test_RentalCharge_UsesTheBorrowingPeriod(t *testing.T) {
	// arrange
	book := core.Book{Title: "Dune", DailyFee: decimal.RequireFromString("25.00")}
	borrowDate := core.ToDate(time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC))
	borrowing := core.Borrowing{BorrowDate: borrowDate, ExpectedReturnDate: borrowDate.AddDate(0, 0, 7)}

	// act
	charge := core.RentalCharge(book, borrowing)

	// assert
	assert.Equal(t, core.PaymentTypePayment, charge.Type)
	assert.Equal(t, int64(17500), charge.MinorUnits())
	assert.Equal(t, "Payment for borrowing of Dune", charge.Description)
}

func Test_FineCharge_DescribesTheOverdueDays(t *testing.T) {
	// arrange
	book := core.Book{Title: "Dune", DailyFee: decimal.RequireFromString("25.00")}

	// act
	charge := core.FineCharge(book, 2)

	// assert
	assert.Equal(t, core.PaymentTypeFine, charge.Type)
	assert.Equal(t, int64(10000), charge.MinorUnits())
	assert.Equal(t, "Fine payment for Dune: 2 days overdue", charge.Description)
}
