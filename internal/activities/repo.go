package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/cyclingcoach/internal/db"
	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultListLimit = 5000
)

type ListParams struct {
	// Start is inclusive, End exclusive.
	Start  time.Time
	End    time.Time
	UserID *uuid.UUID
	Limit  int
	Offset int
}

type NewActivity struct {
	UserID           uuid.UUID
	StartTime        time.Time
	EndTime          time.Time
	DurationSeconds  int
	DistanceKm       float64
	AvgSpeedKmh      *float64
	ActiveEnergyKcal *float64
	ElevationGainM   *float64
	AvgHrBpm         *int
	MaxHrBpm         *int
	Vo2max           *float64
}

type Repo struct {
	db db.Conn
}

func NewRepo(db db.Conn) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context, params ListParams) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if params.Limit <= 0 {
		params.Limit = DefaultListLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	span.SetAttributes(
		attribute.String("start", params.Start.Format(time.RFC3339)),
		attribute.String("end", params.End.Format(time.RFC3339)),
		attribute.Int("limit", params.Limit),
		attribute.Int("offset", params.Offset),
	)
	if params.UserID != nil {
		span.SetAttributes(attribute.String("user-id", params.UserID.String()))
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, started_at, ended_at, duration_seconds, distance_km,
				avg_speed_kmh, active_energy_kcal, elevation_gain_m,
				avg_hr_bpm, max_hr_bpm, vo2max, created_at, updated_at
			FROM load_cycling_activities($1, $2, $3, $4, $5)
		`,
		params.Start.UTC().Format(time.RFC3339),
		params.End.UTC().Format(time.RFC3339),
		params.UserID,
		params.Limit,
		params.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("load cycling activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.StartedAt, &a.EndedAt, &a.DurationSeconds, &a.DistanceKm,
			&a.AvgSpeedKmh, &a.ActiveEnergyKcal, &a.ElevationGainM,
			&a.AvgHrBpm, &a.MaxHrBpm, &a.Vo2max, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cycling activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load cycling activities rows: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(activities)))

	return activities, nil
}

func (r *Repo) Create(ctx context.Context, activity NewActivity) (_ uuid.UUID, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	span.SetAttributes(attribute.String("user-id", activity.UserID.String()))

	var id uuid.UUID
	err = r.db.QueryRow(
		ctx,
		`SELECT insert_cycling_activity($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		activity.UserID,
		activity.StartTime,
		activity.EndTime,
		activity.DurationSeconds,
		activity.DistanceKm,
		activity.AvgSpeedKmh,
		activity.ActiveEnergyKcal,
		activity.ElevationGainM,
		activity.AvgHrBpm,
		activity.MaxHrBpm,
		activity.Vo2max,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert cycling activity: %w", err)
	}

	return id, nil
}
