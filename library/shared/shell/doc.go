// Package shell provides the imperative shell around the pure core
// of the book rental service.
//
// It converts between store records and domain types, maps store errors
// into the domain error taxonomy, and holds the shared contracts and
// observability helpers of command and query handlers. Its subpackages
// connect the outside world: config, checkout (hosted payment sessions),
// notify (notification sinks), observable (handler wrappers) and scheduler.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
