// Package payments implements the payment read use cases: list, retrieve and the cancel callback
// of the checkout provider.
//
// Non-privileged callers only ever see payments of their own borrowings; a payment of someone else
// is reported as not found. The cancel callback is read-only: it returns the payment unchanged
// together with a hint that the session can still be paid.
package payments
