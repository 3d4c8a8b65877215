package shell

import (
	"context"
)

// Command represents the contract for all command types of the rental service.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CommandResult is implemented by every command result through an embedded HandlerResult.
type CommandResult interface {
	Outcome() HandlerResult
}

// CoreCommandHandler defines the contract for components that process commands with business logic only.
// Handlers orchestrate the complete command workflow: load state in a transaction, Decide, apply the effect.
// The generic parameters keep commands and their results type-safe.
// This interface is designed to be wrapped with observability decorators.
type CoreCommandHandler[C Command, R CommandResult] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// Query represents the contract for all query types of the rental service.
type Query interface {
	QueryType() string
}

// CoreQueryHandler defines the contract for components that read and project records.
// Implementations should focus purely on business logic without observability concerns.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
