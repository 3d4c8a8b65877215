package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that has a bad shape or value.
	ErrValidation = errors.New("validation failed")

	// ErrBusinessRuleViolation marks a well-formed request that the rules of the library forbid.
	ErrBusinessRuleViolation = errors.New("business rule violated")

	// ErrNotFound marks an unknown id or a record the caller does not own.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamGateway marks a failure of the checkout session gateway.
	ErrUpstreamGateway = errors.New("checkout gateway failed")

	// ErrUnauthenticated marks an anonymous caller on an operation that needs a user.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden marks a caller without the authorization level an operation needs.
	ErrForbidden = errors.New("not allowed")
)

var (
	ErrExpectedReturnDateInPast = fmt.Errorf("%w: you can't put expected return date in the past", ErrValidation)
	ErrMalformedInput           = fmt.Errorf("%w: malformed input", ErrValidation)

	ErrOutOfStock          = fmt.Errorf("%w: book is out of stock at this moment", ErrBusinessRuleViolation)
	ErrUnpaidBalance       = fmt.Errorf("%w: you have one or more pending payments, you can't make borrowings until you pay for them", ErrBusinessRuleViolation)
	ErrAlreadyReturned     = fmt.Errorf("%w: borrowing has been already returned", ErrBusinessRuleViolation)
	ErrPaymentNotConfirmed = fmt.Errorf("%w: payment was not confirmed by the checkout gateway", ErrBusinessRuleViolation)

	ErrBookNotFound      = fmt.Errorf("%w: book", ErrNotFound)
	ErrBorrowingNotFound = fmt.Errorf("%w: borrowing", ErrNotFound)
	ErrPaymentNotFound   = fmt.Errorf("%w: payment", ErrNotFound)
)
