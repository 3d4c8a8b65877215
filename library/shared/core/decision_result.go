package core

// DecisionResult represents the outcome of a business decision in a Decide function.
// Effect carries what the shell has to apply, it is the zero value unless the outcome is success.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory functions:
// IdempotentDecision(), SuccessDecision(effect), or ErrorDecision(err).
type DecisionResult[E any] struct {
	Outcome string // "idempotent", "success", or "error"
	Effect  E
	Err     error
}

const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
	errorOutcome      = "error"
)

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision[E any]() DecisionResult[E] {
	return DecisionResult[E]{
		Outcome: idempotentOutcome,
	}
}

// SuccessDecision creates a DecisionResult indicating a state change described by effect.
func SuccessDecision[E any](effect E) DecisionResult[E] {
	return DecisionResult[E]{
		Outcome: successOutcome,
		Effect:  effect,
	}
}

// ErrorDecision creates a DecisionResult indicating a violated rule; nothing must be changed.
func ErrorDecision[E any](err error) DecisionResult[E] {
	return DecisionResult[E]{
		Outcome: errorOutcome,
		Err:     err,
	}
}

// HasEffectToApply returns true if the shell has to apply the Effect.
func (r DecisionResult[E]) HasEffectToApply() bool {
	return r.Outcome == successOutcome
}

// IsIdempotent returns true if the decision requires no change.
func (r DecisionResult[E]) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult[E]) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
