package actions

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// AuthLevel is the authorization an action requires from its caller.
type AuthLevel int

const (
	Anonymous AuthLevel = iota
	Authenticated
	Privileged
)

func (l AuthLevel) String() string {
	switch l {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Privileged:
		return "privileged"
	default:
		return "unknown"
	}
}

// SystemCaller is the privileged identity of scheduled jobs.
var SystemCaller = core.Caller{
	UserID:     uuid.MustParse("00000000-0000-7000-8000-000000000001"),
	Privileged: true,
}

func authorize(level AuthLevel, caller core.Caller) error {
	if level == Anonymous {
		return nil
	}

	if caller.IsAnonymous() {
		return core.ErrUnauthenticated
	}

	if level == Privileged && !caller.Privileged {
		return core.ErrForbidden
	}

	return nil
}
