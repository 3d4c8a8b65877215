// Package reissuepaymentsession implements the Reissue Payment Session use case.
//
// A checkout session for the rental fee lapses if the user does not pay in time, and the expiry
// tracker then marks the payment EXPIRED. Reissuing opens a new session for the same amount and
// resets the payment to PENDING with the new session id and URL. For a payment that is not EXPIRED
// nothing changes and the caller learns that the session is still active.
package reissuepaymentsession
