package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FineMultiplier is applied to the daily fee of every overdue day.
const FineMultiplier = 2

const minorUnitExponent = 2

// Charge is an amount to be collected through a checkout session.
type Charge struct {
	Type        PaymentType
	Amount      decimal.Decimal
	Description string
}

// RentalAmount returns dailyFee × days, where at least one day is charged.
func RentalAmount(dailyFee decimal.Decimal, days int) decimal.Decimal {
	return dailyFee.Mul(decimal.NewFromInt(int64(max(1, days))))
}

// FineAmount returns dailyFee × overdueDays × FineMultiplier.
func FineAmount(dailyFee decimal.Decimal, overdueDays int) decimal.Decimal {
	return dailyFee.Mul(decimal.NewFromInt(int64(overdueDays))).Mul(decimal.NewFromInt(FineMultiplier))
}

// ToMinorUnits converts an amount to cents, truncating fractions of a cent.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(minorUnitExponent).Truncate(0).IntPart()
}

// FromMinorUnits converts cents back to an amount.
func FromMinorUnits(minorUnits int64) decimal.Decimal {
	return decimal.New(minorUnits, -minorUnitExponent)
}

// RentalCharge builds the PAYMENT charge for borrowing a book.
func RentalCharge(book Book, borrowing Borrowing) Charge {
	return Charge{
		Type:        PaymentTypePayment,
		Amount:      RentalAmount(book.DailyFee, borrowing.RentalDays()),
		Description: fmt.Sprintf("Payment for borrowing of %s", book.Title),
	}
}

// FineCharge builds the FINE charge for returning a book overdueDays late.
func FineCharge(book Book, overdueDays int) Charge {
	return Charge{
		Type:        PaymentTypeFine,
		Amount:      FineAmount(book.DailyFee, overdueDays),
		Description: fmt.Sprintf("Fine payment for %s: %d days overdue", book.Title, overdueDays),
	}
}

// MinorUnits returns the amount of the charge in cents.
func (c Charge) MinorUnits() int64 {
	return ToMinorUnits(c.Amount)
}
