// Package oteladapters implements the safedelete observability interfaces on top of OpenTelemetry.
//
// Wire them into a postgresengine.Store like this:
//
//	store, err := postgresengine.NewStoreFromPGXPool(pool, "books",
//		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("books")),
//		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("books"))),
//		postgresengine.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("books"))),
//	)
package oteladapters
