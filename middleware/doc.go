// Package middleware provides composable middleware for the act phase
// of a job run.
//
// A [Middleware] is a function that wraps the act handler. Middleware are
// composed into a chain using [Chain] and applied before each act runs.
// They are applied right-to-left: the first middleware in the slice is the
// outermost wrapper.
//
//	// logging → recover → handler
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging] — logs job type, duration, and outcome at each act
//   - [Recover] — catches panics and converts them to errors
//   - [Tracing] — wraps the act phase in an OpenTelemetry span
//   - [Metrics] — records per-act duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, j *job.Job, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting (e.g., circuit breaker, rate limiting).
package middleware
