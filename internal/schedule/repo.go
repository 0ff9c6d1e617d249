package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/cyclingcoach/internal/db"
	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

var ErrIntervalNotFound = errors.New("interval not found")

const intervalColumns = `id, user_id, type, start_at, end_at, title, description, created_at, updated_at`

type ListParams struct {
	Start  time.Time
	End    time.Time
	UserID *uuid.UUID
	Types  []Type
}

type NewInterval struct {
	UserID      uuid.UUID
	Type        Type
	Start       time.Time
	End         time.Time
	Title       *string
	Description *string
}

// IntervalUpdate carries the fields to change; nil fields are left as they are.
type IntervalUpdate struct {
	ID          uuid.UUID
	NewStart    *time.Time
	NewEnd      *time.Time
	Type        *Type
	Title       *string
	Description *string
	Snap        bool
}

type Repo struct {
	db db.Conn
}

func NewRepo(db db.Conn) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context, params ListParams) (_ []Interval, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	span.SetAttributes(
		attribute.String("start", params.Start.Format(time.RFC3339)),
		attribute.String("end", params.End.Format(time.RFC3339)),
	)

	var types []string
	for _, t := range params.Types {
		types = append(types, string(t))
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+intervalColumns+` FROM list_schedule_intervals($1, $2, $3, $4)`,
		params.Start, params.End, params.UserID, types,
	)
	if err != nil {
		return nil, fmt.Errorf("list schedule intervals: %w", err)
	}
	defer rows.Close()

	intervals := []Interval{}
	for rows.Next() {
		interval, err := scanInterval(rows)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, interval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list schedule intervals rows: %w", err)
	}

	return intervals, nil
}

func (r *Repo) Create(ctx context.Context, interval NewInterval) (_ uuid.UUID, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var id uuid.UUID
	err = r.db.QueryRow(
		ctx,
		`SELECT create_schedule_interval($1, $2, $3, $4, $5, $6)`,
		interval.UserID, string(interval.Type), interval.Start, interval.End, interval.Title, interval.Description,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create schedule interval: %w", err)
	}

	return id, nil
}

func (r *Repo) Update(ctx context.Context, update IntervalUpdate) (_ *Interval, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	span.SetAttributes(attribute.String("id", update.ID.String()))

	var typ *string
	if update.Type != nil {
		s := string(*update.Type)
		typ = &s
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+intervalColumns+` FROM update_schedule_interval_by_id($1, $2, $3, $4, $5, $6, $7)`,
		update.ID, update.NewStart, update.NewEnd, typ, update.Title, update.Description, update.Snap,
	)
	if err != nil {
		return nil, fmt.Errorf("update schedule interval: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("update schedule interval rows: %w", err)
		}
		return nil, ErrIntervalNotFound
	}

	interval, err := scanInterval(rows)
	if err != nil {
		return nil, err
	}

	return &interval, nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	span.SetAttributes(attribute.String("id", id.String()))

	var deletedID *uuid.UUID
	err = r.db.QueryRow(
		ctx,
		`SELECT delete_schedule_interval_by_id($1)`,
		id,
	).Scan(&deletedID)
	if errors.Is(err, pgx.ErrNoRows) || pkg.IsNoDataFoundError(err) || (err == nil && deletedID == nil) {
		return ErrIntervalNotFound
	}
	if err != nil {
		return fmt.Errorf("delete schedule interval: %w", err)
	}

	return nil
}

func scanInterval(rows pgx.Rows) (Interval, error) {
	var (
		interval Interval
		typ      string
	)
	if err := rows.Scan(
		&interval.ID, &interval.UserID, &typ, &interval.StartAt, &interval.EndAt,
		&interval.Title, &interval.Description, &interval.CreatedAt, &interval.UpdatedAt,
	); err != nil {
		return Interval{}, fmt.Errorf("scan schedule interval: %w", err)
	}
	interval.Type = Type(typ)
	return interval, nil
}
