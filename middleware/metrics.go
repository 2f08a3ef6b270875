package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/lifecycle/job"
)

// meterName is the instrumentation scope name for lifecycle metrics.
const meterName = "github.com/xraph/lifecycle"

// Metrics returns middleware that records per-act execution metrics using
// the global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - lifecycle.job.act.duration (Float64Histogram): act time in seconds,
//     with attributes: job_type, outcome ("ok" or "error")
//   - lifecycle.job.act.runs (Int64Counter): total act invocations,
//     with attributes: job_type, outcome ("ok" or "error")
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"lifecycle.job.act.duration",
		metric.WithDescription("Duration of the job act phase in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	runs, rErr := meter.Int64Counter(
		"lifecycle.job.act.runs",
		metric.WithDescription("Total number of job act invocations"),
		metric.WithUnit("{run}"),
	)
	_ = rErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, j *job.Job, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		outcome := "ok"
		if err != nil {
			outcome = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("job_type", j.Type),
			attribute.String("outcome", outcome),
		)

		duration.Record(ctx, elapsed, attrs)
		runs.Add(ctx, 1, attrs)

		return err
	}
}
