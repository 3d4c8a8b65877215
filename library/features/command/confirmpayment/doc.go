// Package confirmpayment implements the Confirm Payment use case, the success callback of a checkout session.
//
// The payment is looked up by its session id and the checkout gateway is asked whether the session was paid.
// Local state alone never decides: only a paid session moves the payment from PENDING (or EXPIRED) to PAID.
// A notification is sent after the commit. Confirming an already PAID payment changes nothing and sends nothing.
package confirmpayment
