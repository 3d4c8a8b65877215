package rentalstore

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ActiveState narrows borrowings by their return state.
type ActiveState int

const (
	AnyActiveState ActiveState = iota
	OnlyActiveBorrowings
	OnlyReturnedBorrowings
)

/***** BorrowingFilter *****/

type BorrowingFilter struct {
	userIDs     []uuid.UUID
	activeState ActiveState
	dueBy       time.Time
}

func (f BorrowingFilter) UserIDs() []uuid.UUID {
	return f.userIDs
}

func (f BorrowingFilter) ActiveState() ActiveState {
	return f.activeState
}

// DueBy returns the latest expected return date to include, or the zero time if unrestricted.
func (f BorrowingFilter) DueBy() time.Time {
	return f.dueBy
}

// Matches reports whether the borrowing satisfies the filter.
// Engines without a query language (memengine) use it, SQL engines translate the filter instead.
func (f BorrowingFilter) Matches(b Borrowing) bool {
	if len(f.userIDs) > 0 && !slices.Contains(f.userIDs, b.UserID) {
		return false
	}

	switch f.activeState {
	case OnlyActiveBorrowings:
		if !b.IsActive() {
			return false
		}
	case OnlyReturnedBorrowings:
		if b.IsActive() {
			return false
		}
	}

	if !f.dueBy.IsZero() && b.ExpectedReturnDate.After(f.dueBy) {
		return false
	}

	return true
}

/***** BorrowingFilterBuilder *****/

// BorrowingFilterBuilder builds a BorrowingFilter.
// All criteria are combined with AND, multiple user ids with OR.
type BorrowingFilterBuilder interface {
	// OwnedByAnyOf restricts the filter to borrowings of the given users.
	//
	// It sanitizes the input:
	//	- removing nil UUIDs
	//	- sorting the ids
	//	- removing duplicate ids
	OwnedByAnyOf(userIDs ...uuid.UUID) BorrowingFilterBuilder

	// OnlyActive restricts the filter to borrowings that were not returned yet.
	OnlyActive() BorrowingFilterBuilder

	// OnlyReturned restricts the filter to borrowings that were returned.
	OnlyReturned() BorrowingFilterBuilder

	// DueBy restricts the filter to borrowings expected back on or before the given date.
	DueBy(date time.Time) BorrowingFilterBuilder

	Finalize() BorrowingFilter
}

type borrowingFilterBuilder struct {
	filter BorrowingFilter
}

// BuildBorrowingFilter creates a BorrowingFilterBuilder.
// A filter finalized without any criteria matches all borrowings.
func BuildBorrowingFilter() BorrowingFilterBuilder {
	return borrowingFilterBuilder{}
}

func (b borrowingFilterBuilder) OwnedByAnyOf(userIDs ...uuid.UUID) BorrowingFilterBuilder {
	b.filter.userIDs = sanitizeIDs(append(slices.Clone(b.filter.userIDs), userIDs...))
	return b
}

func (b borrowingFilterBuilder) OnlyActive() BorrowingFilterBuilder {
	b.filter.activeState = OnlyActiveBorrowings
	return b
}

func (b borrowingFilterBuilder) OnlyReturned() BorrowingFilterBuilder {
	b.filter.activeState = OnlyReturnedBorrowings
	return b
}

func (b borrowingFilterBuilder) DueBy(date time.Time) BorrowingFilterBuilder {
	b.filter.dueBy = date
	return b
}

func (b borrowingFilterBuilder) Finalize() BorrowingFilter {
	return b.filter
}

/***** PaymentFilter *****/

type PaymentFilter struct {
	userIDs      []uuid.UUID
	borrowingIDs []uuid.UUID
	statuses     []string
}

func (f PaymentFilter) UserIDs() []uuid.UUID {
	return f.userIDs
}

func (f PaymentFilter) BorrowingIDs() []uuid.UUID {
	return f.borrowingIDs
}

func (f PaymentFilter) Statuses() []string {
	return f.statuses
}

// Matches reports whether the payment satisfies the filter.
func (f PaymentFilter) Matches(p Payment) bool {
	if len(f.userIDs) > 0 && !slices.Contains(f.userIDs, p.UserID) {
		return false
	}

	if len(f.borrowingIDs) > 0 && !slices.Contains(f.borrowingIDs, p.BorrowingID) {
		return false
	}

	if len(f.statuses) > 0 && !slices.Contains(f.statuses, p.Status) {
		return false
	}

	return true
}

/***** PaymentFilterBuilder *****/

// PaymentFilterBuilder builds a PaymentFilter.
// All criteria are combined with AND, multiple values of one criterion with OR.
type PaymentFilterBuilder interface {
	// OwnedByAnyOf restricts the filter to payments of borrowings of the given users.
	OwnedByAnyOf(userIDs ...uuid.UUID) PaymentFilterBuilder

	// OfAnyBorrowing restricts the filter to payments of the given borrowings.
	OfAnyBorrowing(borrowingIDs ...uuid.UUID) PaymentFilterBuilder

	// WithAnyStatusOf restricts the filter to payments with one of the given statuses, empty values are removed.
	WithAnyStatusOf(statuses ...string) PaymentFilterBuilder

	Finalize() PaymentFilter
}

type paymentFilterBuilder struct {
	filter PaymentFilter
}

// BuildPaymentFilter creates a PaymentFilterBuilder.
// A filter finalized without any criteria matches all payments.
func BuildPaymentFilter() PaymentFilterBuilder {
	return paymentFilterBuilder{}
}

func (b paymentFilterBuilder) OwnedByAnyOf(userIDs ...uuid.UUID) PaymentFilterBuilder {
	b.filter.userIDs = sanitizeIDs(append(slices.Clone(b.filter.userIDs), userIDs...))
	return b
}

func (b paymentFilterBuilder) OfAnyBorrowing(borrowingIDs ...uuid.UUID) PaymentFilterBuilder {
	b.filter.borrowingIDs = sanitizeIDs(append(slices.Clone(b.filter.borrowingIDs), borrowingIDs...))
	return b
}

func (b paymentFilterBuilder) WithAnyStatusOf(statuses ...string) PaymentFilterBuilder {
	all := slices.Clone(b.filter.statuses)
	for _, status := range statuses {
		if status != "" {
			all = append(all, status)
		}
	}

	slices.Sort(all)
	b.filter.statuses = slices.Compact(all)

	return b
}

func (b paymentFilterBuilder) Finalize() PaymentFilter {
	return b.filter
}

func sanitizeIDs(ids []uuid.UUID) []uuid.UUID {
	ids = slices.DeleteFunc(ids, func(id uuid.UUID) bool {
		return id == uuid.Nil
	})

	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})

	return slices.Compact(ids)
}
