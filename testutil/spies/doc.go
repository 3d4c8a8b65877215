// Package spies provides recording test doubles for the observability interfaces
// (metrics, tracing, plain and contextual logging) used by the rental store and the command handlers,
// and a NotifierSpy standing in for the notification sinks.
package spies
