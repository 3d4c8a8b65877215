package shell

// HandlerResult represents the business outcome of a command handler execution
// without coupling the handler to specific observability implementations.
type HandlerResult struct {
	// Idempotent indicates that no state change was needed.
	// This is a first-class business outcome, not an error condition.
	Idempotent bool
}

// Outcome returns the result itself, so structs embedding HandlerResult implement CommandResult.
func (r HandlerResult) Outcome() HandlerResult {
	return r
}

// NewSuccessResult creates a HandlerResult for operations that changed state.
func NewSuccessResult() HandlerResult {
	return HandlerResult{Idempotent: false}
}

// NewIdempotentResult creates a HandlerResult for operations that needed no change.
func NewIdempotentResult() HandlerResult {
	return HandlerResult{Idempotent: true}
}

// NewErrorResult creates a HandlerResult for failed operations.
func NewErrorResult() HandlerResult {
	return HandlerResult{Idempotent: false}
}
