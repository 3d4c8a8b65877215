// Package oteladapters provides OpenTelemetry implementations of the rentalstore observability interfaces.
//
// The same adapters are used by the PostgreSQL store and by the command and query handlers,
// so store spans nest below handler spans and logs carry the trace and span ids.
//
//	tracer := otel.Tracer("book-rental")
//	meter := otel.Meter("book-rental")
//
//	store, err := postgresengine.NewStoreFromPGXPool(pool,
//		postgresengine.WithTracing(oteladapters.NewTracingCollector(tracer)),
//		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(meter)),
//		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("book-rental")),
//	)
package oteladapters
