package memories

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/cyclingcoach/internal/db"
	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

var ErrMemoryNotFound = errors.New("memory not found")

type Repo struct {
	db db.Conn
}

func NewRepo(db db.Conn) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, userID uuid.UUID, title *string, content string) (_ uuid.UUID, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.memories.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var id *uuid.UUID
	err = r.db.QueryRow(
		ctx,
		`SELECT create_user_memory($1, $2, $3)`,
		userID, title, content,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create user memory: %w", err)
	}
	if id == nil {
		return uuid.Nil, errors.New("create user memory: empty response")
	}

	return *id, nil
}

func (r *Repo) List(ctx context.Context, userID uuid.UUID, limit, offset int) (_ []Memory, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.memories.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	span.SetAttributes(
		attribute.String("user-id", userID.String()),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, user_id, title, content, created_at, updated_at
			FROM list_user_memories($1, $2, $3)
		`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list user memories: %w", err)
	}
	defer rows.Close()

	memories := []Memory{}
	for rows.Next() {
		var m Memory
		if err := rows.Scan(&m.ID, &m.UserID, &m.Title, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user memory: %w", err)
		}
		memories = append(memories, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user memories rows: %w", err)
	}

	return memories, nil
}

func (r *Repo) Delete(ctx context.Context, id, userID uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.memories.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	span.SetAttributes(attribute.String("id", id.String()))

	var deletedID *uuid.UUID
	err = r.db.QueryRow(
		ctx,
		`SELECT delete_user_memory($1, $2)`,
		id, userID,
	).Scan(&deletedID)
	if errors.Is(err, pgx.ErrNoRows) || pkg.IsNoDataFoundError(err) || (err == nil && deletedID == nil) {
		return ErrMemoryNotFound
	}
	if err != nil {
		return fmt.Errorf("delete user memory: %w", err)
	}

	return nil
}
