// Package borrowings implements the borrowing read use cases: list with filters and retrieve one
// borrowing together with its payments.
//
// A non-privileged caller only sees their own borrowings and any user filter they pass is ignored.
// A privileged caller sees all borrowings and may narrow them down to a set of users.
// Both callers may filter by the active state (not returned yet).
package borrowings
