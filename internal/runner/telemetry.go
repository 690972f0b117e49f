package runner

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/garagon/presubmit/internal/runner"

var (
	checkLatency metric.Float64Histogram
	checkTotal   metric.Int64Counter
	resultsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// initMetrics creates the instruments once. The global meter provider is a
// no-op unless the caller installs one.
func initMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		var err error

		checkLatency, err = meter.Float64Histogram(
			"presubmit_check_duration_seconds",
			metric.WithDescription("Duration of a single presubmit check"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		checkTotal, err = meter.Int64Counter(
			"presubmit_checks_total",
			metric.WithDescription("Number of presubmit checks run"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		resultsTotal, err = meter.Int64Counter(
			"presubmit_results_total",
			metric.WithDescription("Number of results produced, by kind"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startRunSpan(ctx context.Context, runID, event string, files int) (context.Context, trace.Span) {
	return tracer().Start(ctx, "presubmit.Run",
		trace.WithAttributes(
			attribute.String("presubmit.run_id", runID),
			attribute.String("presubmit.event", event),
			attribute.Int("presubmit.files", files),
		),
	)
}

func setRunSpanResult(span trace.Span, report *Report) {
	span.SetAttributes(
		attribute.Int("presubmit.checks_run", report.ChecksRun),
		attribute.Int("presubmit.errors", report.Count(KindError)),
		attribute.Int("presubmit.warnings", report.Count(KindWarning)),
		attribute.Int("presubmit.messages", report.Count(KindNotify)),
	)
	if report.Count(KindError) > 0 {
		span.SetStatus(codes.Error, "presubmit errors")
	}
}

func startCheckSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "presubmit.check/"+name,
		trace.WithAttributes(attribute.String("presubmit.check", name)),
	)
}

func setCheckSpanResult(span trace.Span, results []Result, err error) {
	span.SetAttributes(attribute.Int("presubmit.results", len(results)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	for _, r := range results {
		if r.Kind == KindError {
			span.SetStatus(codes.Error, r.Message)
			return
		}
	}
}

func recordCheckMetrics(ctx context.Context, name string, elapsed time.Duration, results []Result, ran bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("check", name),
		attribute.Bool("ran", ran),
	)
	checkLatency.Record(ctx, elapsed.Seconds(), attrs)
	checkTotal.Add(ctx, 1, attrs)
	for _, r := range results {
		resultsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("check", name),
			attribute.String("kind", r.Kind.String()),
		))
	}
}
