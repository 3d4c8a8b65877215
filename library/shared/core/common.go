package core

import (
	"time"

	"github.com/google/uuid"
)

// Date represents a calendar day, always normalized to midnight UTC.
type Date = time.Time

// DateLayout is the textual form of a Date in commands, views and notifications.
const DateLayout = "2006-01-02"

// ToDate truncates a point in time to its calendar day.
func ToDate(t time.Time) Date {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, err
	}

	return ToDate(parsed), nil
}

// FormatDate renders a Date as YYYY-MM-DD.
func FormatDate(d Date) string {
	return d.Format(DateLayout)
}

// DaysBetween returns the number of whole days from one calendar day to another.
// It is negative if to lies before from.
func DaysBetween(from, to Date) int {
	return int(ToDate(to).Sub(ToDate(from)) / (24 * time.Hour))
}

// Caller identifies who invokes an operation.
// A Caller with a nil UserID is anonymous.
type Caller struct {
	UserID     uuid.UUID
	Privileged bool
}

// IsAnonymous reports whether the caller is not authenticated.
func (c Caller) IsAnonymous() bool {
	return c.UserID == uuid.Nil
}

// CanAccess reports whether the caller may see or act on something owned by ownerID.
func (c Caller) CanAccess(ownerID uuid.UUID) bool {
	return c.Privileged || (!c.IsAnonymous() && c.UserID == ownerID)
}
