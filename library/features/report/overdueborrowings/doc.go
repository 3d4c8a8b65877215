// Package overdueborrowings implements the Overdue Scanner, a report run on a schedule.
//
// It selects all active borrowings expected back by tomorrow and sends one notification
// per borrowing, or a single "nothing overdue" notification when there is none.
// The scanner never changes borrowings or payments.
package overdueborrowings
