// Package borrowbook implements the Borrow Book use case.
//
// A user borrows one copy of a book until an expected return date. In one transaction the handler
// locks the user and the book, checks the rules with the pure Decide function, decrements the inventory,
// stores the borrowing, opens a checkout session for the rental fee and stores the PENDING payment.
// If any of these steps fails, nothing is kept. A notification is sent after the commit.
//
// Repeating a command with the same borrowing id is an idempotent no-op.
package borrowbook
