// Package expirepaymentsessions implements the periodic job that marks payments EXPIRED
// once the checkout gateway reports their session as expired.
//
// Every PENDING payment is checked on its own. A gateway failure for one session is reported
// but does not stop the run, and a payment that changed concurrently is skipped.
package expirepaymentsessions
