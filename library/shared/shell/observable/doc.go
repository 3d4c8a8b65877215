// Package observable provides wrappers that instrument command and query handlers
// with metrics, tracing and logging while the handlers keep only business logic.
//
// The wrappers are applied explicitly at wiring time:
//
//	coreHandler := borrowbook.NewCommandHandler(store, gateway, notifier)
//
//	handler, err := observable.NewCommandWrapper[borrowbook.Command, borrowbook.Result](
//		coreHandler,
//		observable.WithCommandMetrics[borrowbook.Command, borrowbook.Result](metricsCollector),
//		observable.WithCommandTracing[borrowbook.Command, borrowbook.Result](tracingCollector),
//		observable.WithCommandContextualLogging[borrowbook.Command, borrowbook.Result](contextualLogger),
//	)
//
//	result, err := handler.Handle(ctx, command)
//
// Every concern is optional; a wrapper without options only delegates.
// Rejections (validation errors, business rule violations, not found) are
// reported with the status "rejected" and logged at warn level, all other
// failures with "error", "canceled", "timeout" or "concurrency_conflict".
package observable
