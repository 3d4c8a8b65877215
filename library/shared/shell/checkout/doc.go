// Package checkout connects the payment ledger to the hosted checkout provider.
//
// StripeGateway creates Stripe Checkout Sessions for rental fees and fines and retrieves
// their status. Every provider failure is reported as core.ErrUpstreamGateway so that the
// enclosing transaction rolls back.
package checkout
