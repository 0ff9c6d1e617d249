package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/cyclingcoach/internal/activities"
	"github.com/2beens/cyclingcoach/internal/telemetry/metrics"
	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=$GOFILE -destination=analyzer_mocks_test.go -package=stats_test

type activitiesRepo interface {
	List(ctx context.Context, params activities.ListParams) ([]activities.Activity, error)
}

// Window is a query range, Start inclusive and End exclusive, optionally for one user.
type Window struct {
	Start  time.Time
	End    time.Time
	UserID *uuid.UUID
}

// MaxWindowSpan bounds a query range; daily series are allocated per day of the window.
const MaxWindowSpan = 10 * 366 * 24 * time.Hour

var ErrWindowTooLong = errors.New("date range too long, max 10 years")

func (w Window) Validate() error {
	if w.End.Sub(w.Start) > MaxWindowSpan {
		return ErrWindowTooLong
	}
	return nil
}

type Analyzer struct {
	repo           activitiesRepo
	metricsManager *metrics.Manager
}

func NewAnalyzer(repo activitiesRepo, metricsManager *metrics.Manager) *Analyzer {
	return &Analyzer{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (a *Analyzer) load(ctx context.Context, span trace.Span, window Window) ([]activities.Activity, error) {
	span.SetAttributes(
		attribute.String("start", window.Start.Format(time.RFC3339)),
		attribute.String("end", window.End.Format(time.RFC3339)),
	)
	if window.UserID != nil {
		span.SetAttributes(attribute.String("user-id", window.UserID.String()))
	}

	acts, err := a.repo.List(ctx, activities.ListParams{
		Start:  window.Start,
		End:    window.End,
		UserID: window.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}

	span.SetAttributes(attribute.Int("activities", len(acts)))
	return acts, nil
}

func (a *Analyzer) computed(operation string) {
	if a.metricsManager != nil {
		a.metricsManager.CounterStatsComputations.WithLabelValues(operation).Inc()
	}
}

func (a *Analyzer) Summary(ctx context.Context, window Window) (_ Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.summary")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	acts, err := a.load(ctx, span, window)
	if err != nil {
		return Summary{}, err
	}

	a.computed("summary")
	return Summarize(acts), nil
}

func (a *Analyzer) Weekly(ctx context.Context, window Window) (_ []WeeklyBucket, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.weekly")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	acts, err := a.load(ctx, span, window)
	if err != nil {
		return nil, err
	}

	a.computed("weekly")
	return WeeklyRollup(acts), nil
}

func (a *Analyzer) Daily(ctx context.Context, window Window) (_ []DailyBucket, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.daily")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	acts, err := a.load(ctx, span, window)
	if err != nil {
		return nil, err
	}

	a.computed("daily")
	return DailyRollup(acts), nil
}

func (a *Analyzer) Overtraining(
	ctx context.Context,
	window Window,
	hr HeartRateParams,
	ctlDays, atlDays int,
) (_ Overtraining, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.overtraining")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	span.SetAttributes(attribute.Int("ctl-days", ctlDays), attribute.Int("atl-days", atlDays))

	acts, err := a.load(ctx, span, window)
	if err != nil {
		return Overtraining{}, err
	}

	a.computed("overtraining")
	return OvertrainingSnapshot(acts, OvertrainingParams{
		Start:     window.Start,
		End:       window.End,
		HeartRate: hr,
		CtlDays:   ctlDays,
		AtlDays:   atlDays,
	}), nil
}

// WorkloadScore fetches the display window and, independently, the trailing
// baseline window ending at window.End.
func (a *Analyzer) WorkloadScore(ctx context.Context, window Window) (_ Workload, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.workload-score")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	acts, err := a.load(ctx, span, window)
	if err != nil {
		return Workload{}, err
	}

	baseline, err := a.repo.List(ctx, activities.ListParams{
		Start:  window.End.Add(-BaselineWindow),
		End:    window.End,
		UserID: window.UserID,
	})
	if err != nil {
		return Workload{}, fmt.Errorf("load baseline activities: %w", err)
	}
	span.SetAttributes(attribute.Int("baseline-activities", len(baseline)))

	a.computed("workload_score")
	return WorkloadScores(acts, baseline, window.End), nil
}

func (a *Analyzer) Vo2maxTrend(ctx context.Context, window Window) (_ Vo2maxTrend, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.vo2max-trend")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	acts, err := a.load(ctx, span, window)
	if err != nil {
		return Vo2maxTrend{}, err
	}

	a.computed("vo2max_trend")
	return Vo2maxTrendOf(acts), nil
}

func (a *Analyzer) ClimbMetrics(ctx context.Context, window Window, limit int) (_ Climb, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.climb-metrics")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	acts, err := a.load(ctx, span, window)
	if err != nil {
		return Climb{}, err
	}

	a.computed("climb_metrics")
	return ClimbMetrics(acts, limit), nil
}

func (a *Analyzer) TopRides(ctx context.Context, window Window, orderBy OrderBy, limit int) (_ []Ride, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.top-rides")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	// reject a bad ordering before hitting the database
	if _, err = TopRides(nil, orderBy, limit); err != nil {
		return nil, err
	}

	acts, err := a.load(ctx, span, window)
	if err != nil {
		return nil, err
	}

	a.computed("top_rides")
	return TopRides(acts, orderBy, limit)
}
