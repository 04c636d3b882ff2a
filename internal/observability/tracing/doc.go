// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created around scheduler job runs and feed fetches so a slow run
// can be broken down by stage. The worker wires a real trace provider at
// startup; without one the global no-op provider keeps span creation free.
//
// Example usage:
//
//	import "newswatch/internal/observability/tracing"
//
//	func runJob(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "job-run")
//	    defer span.End()
//	    // ... run pipeline ...
//	}
package tracing
