package memories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/cyclingcoach/internal/memories"
)

func TestRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := memories.NewRepo(mock)
	newID := uuid.New()
	title := "fueling"

	mock.ExpectQuery(`SELECT create_user_memory\(\$1, \$2, \$3\)`).
		WithArgs(memories.FixedUserID, &title, "eats a gel every 40 minutes").
		WillReturnRows(pgxmock.NewRows([]string{"create_user_memory"}).AddRow(&newID))

	id, err := repo.Create(context.Background(), memories.FixedUserID, &title, "eats a gel every 40 minutes")
	require.NoError(t, err)
	assert.Equal(t, newID, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Create_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := memories.NewRepo(mock)
	mock.ExpectQuery(`SELECT create_user_memory`).WillReturnError(errors.New("permission denied"))

	id, err := repo.Create(context.Background(), memories.FixedUserID, nil, "x")
	require.Error(t, err)
	assert.Equal(t, uuid.Nil, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := memories.NewRepo(mock)
	userID := uuid.New()
	id1, id2 := uuid.New(), uuid.New()
	title := "goal"
	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	rows := pgxmock.NewRows([]string{"id", "user_id", "title", "content", "created_at", "updated_at"}).
		AddRow(id1, userID, &title, "finish a gran fondo in september", created, &updated).
		AddRow(id2, userID, nil, "knee hurts above 300W", created.Add(time.Minute), nil)

	mock.ExpectQuery(`FROM list_user_memories\(\$1, \$2, \$3\)`).
		WithArgs(userID, 10, 0).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, id1, list[0].ID)
	require.NotNil(t, list[0].Title)
	assert.Equal(t, "goal", *list[0].Title)
	require.NotNil(t, list[0].UpdatedAt)
	assert.Equal(t, id2, list[1].ID)
	assert.Nil(t, list[1].Title)
	assert.Nil(t, list[1].UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_List_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := memories.NewRepo(mock)
	mock.ExpectQuery(`FROM list_user_memories`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "content", "created_at", "updated_at"}))

	list, err := repo.List(context.Background(), uuid.New(), 50, 0)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRepo_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := memories.NewRepo(mock)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT delete_user_memory\(\$1, \$2\)`).
		WithArgs(id, userID).
		WillReturnRows(pgxmock.NewRows([]string{"delete_user_memory"}).AddRow(&id))
	require.NoError(t, repo.Delete(context.Background(), id, userID))

	mock.ExpectQuery(`SELECT delete_user_memory`).
		WithArgs(id, userID).
		WillReturnRows(pgxmock.NewRows([]string{"delete_user_memory"}).AddRow(nil))
	assert.ErrorIs(t, repo.Delete(context.Background(), id, userID), memories.ErrMemoryNotFound)

	mock.ExpectQuery(`SELECT delete_user_memory`).
		WithArgs(id, userID).
		WillReturnError(pgx.ErrNoRows)
	assert.ErrorIs(t, repo.Delete(context.Background(), id, userID), memories.ErrMemoryNotFound)

	mock.ExpectQuery(`SELECT delete_user_memory`).
		WithArgs(id, userID).
		WillReturnError(errors.New("deadlock detected"))
	err = repo.Delete(context.Background(), id, userID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, memories.ErrMemoryNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
