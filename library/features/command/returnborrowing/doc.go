// Package returnborrowing implements the Return Borrowing use case.
//
// Returning sets the actual return date to today and puts the copy back into the inventory.
// A return after the expected return date still completes, but additionally charges a fine of
// dailyFee × overdueDays × 2 through a new checkout session, and the caller gets its URL.
// All of it happens in one transaction.
//
// A borrowing can be returned once. Every further attempt fails with core.ErrAlreadyReturned.
package returnborrowing
