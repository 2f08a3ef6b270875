// Package observability ships a notifier that turns job mutations into
// OpenTelemetry metrics. Register it on the notify dispatcher to track
// status transition counts and progress without touching job code.
package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/lifecycle/job"
	"github.com/xraph/lifecycle/notify"
)

// meterName is the instrumentation scope name for lifecycle metrics.
const meterName = "github.com/xraph/lifecycle/observability"

// Compile-time interface check.
var _ notify.Notifier = (*MetricsNotifier)(nil)

// MetricsNotifier records a counter per observed status transition and
// a histogram of reported progress. Notifications that do not change
// the status only feed the progress histogram.
type MetricsNotifier struct {
	transitions metric.Int64Counter
	progress    metric.Int64Histogram

	// last status seen per job, so repeat notifications at the same
	// status are not double-counted as transitions.
	mu         sync.Mutex
	lastStatus map[string]job.Status
}

// NewMetricsNotifier creates a notifier using the global OTel
// MeterProvider. Without a configured provider the instruments are
// noops and the notifier is a pass-through.
func NewMetricsNotifier() *MetricsNotifier {
	return NewMetricsNotifierWithMeter(otel.Meter(meterName))
}

// NewMetricsNotifierWithMeter creates a notifier with the provided
// meter. This variant allows injecting a specific MeterProvider for
// testing.
func NewMetricsNotifierWithMeter(meter metric.Meter) *MetricsNotifier {
	transitions, tErr := meter.Int64Counter(
		"lifecycle.job.transitions",
		metric.WithDescription("Total number of observed job status transitions"),
		metric.WithUnit("{transition}"),
	)
	_ = tErr // noop fallback guaranteed by OTel API contract

	progress, pErr := meter.Int64Histogram(
		"lifecycle.job.progress",
		metric.WithDescription("Reported job progress in percent"),
		metric.WithUnit("%"),
	)
	_ = pErr // noop fallback guaranteed by OTel API contract

	return &MetricsNotifier{
		transitions: transitions,
		progress:    progress,
		lastStatus:  make(map[string]job.Status),
	}
}

func (m *MetricsNotifier) Name() string { return "observability-metrics" }

func (m *MetricsNotifier) Notify(ctx context.Context, j *job.Job) error {
	key := j.ID.String()
	m.mu.Lock()
	changed := m.lastStatus[key] != j.Status
	if changed {
		m.lastStatus[key] = j.Status
		if j.Status.IsTerminal() {
			delete(m.lastStatus, key)
		}
	}
	m.mu.Unlock()

	if changed {
		m.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("job_type", j.Type),
			attribute.String("status", string(j.Status)),
		))
	}

	m.progress.Record(ctx, int64(j.PercentProgress()), metric.WithAttributes(
		attribute.String("job_type", j.Type),
	))
	return nil
}
