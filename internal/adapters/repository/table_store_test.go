package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/core/internal/adapters/rowmap"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/config"
	"github.com/flowboard/core/internal/infrastructure/database"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New("sqlite", config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestStore(t *testing.T) *SQLTableStore {
	t.Helper()
	db := newTestDB(t)
	return NewSQLTableStore(db.DB, "sqlite", map[string][]string{"tasks": rowmap.Columns}, logger.NewNop())
}

func insertTask(t *testing.T, store *SQLTableStore, title string, status entities.TaskStatus) ports.Row {
	t.Helper()
	owner := int64(1)
	row, err := store.Insert(context.Background(), "tasks", rowmap.InsertPayload(entities.NewTask{
		Title:       title,
		Description: "desc",
		Status:      status,
		Priority:    entities.PriorityMedium,
		Type:        entities.TaskTypeTask,
		Points:      1,
		Assignee:    "Dao",
		Labels:      entities.Some([]string{"a", "b"}),
		OwnerID:     &owner,
	}))
	require.NoError(t, err)
	require.NotNil(t, row)
	return row
}

func TestSQLTableStoreInsertReturnsCanonicalRow(t *testing.T) {
	store := newTestStore(t)

	row := insertTask(t, store, "first", entities.TaskStatusTodo)
	task := rowmap.RowToTask(row)

	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, "first", task.Title)
	assert.Equal(t, []string{"a", "b"}, task.Labels)
	assert.Equal(t, int64(1), task.OwnerID)
	assert.NotNil(t, task.CreatedAt)
	assert.NotNil(t, task.UpdatedAt)
	assert.Nil(t, task.PlannedStartDate)
}

func TestSQLTableStoreSelectOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.SelectAll(ctx, "tasks", ports.OrderByID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	insertTask(t, store, "one", entities.TaskStatusDone)
	insertTask(t, store, "two", entities.TaskStatusTodo)
	insertTask(t, store, "three", entities.TaskStatusDone)

	all, err := store.SelectAll(ctx, "tasks", ports.OrderByID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "one", rowmap.RowToTask(all[0]).Title)
	assert.Equal(t, "three", rowmap.RowToTask(all[2]).Title)

	done, err := store.SelectEq(ctx, "tasks", "status", "done", ports.OrderByID)
	require.NoError(t, err)
	require.Len(t, done, 2)
	assert.Equal(t, "one", rowmap.RowToTask(done[0]).Title)
	assert.Equal(t, "three", rowmap.RowToTask(done[1]).Title)
}

func TestSQLTableStoreUpdateByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := rowmap.RowToTask(insertTask(t, store, "move me", entities.TaskStatusTodo))

	row, err := store.UpdateByID(ctx, "tasks", created.ID, rowmap.UpdatePayload(entities.TaskPatch{
		Status:   entities.Some(entities.TaskStatusInProgress),
		Labels:   entities.Null[[]string](),
		SprintID: entities.Some(int64(4)),
	}))
	require.NoError(t, err)
	require.NotNil(t, row)

	updated := rowmap.RowToTask(row)
	assert.Equal(t, entities.TaskStatusInProgress, updated.Status)
	assert.Equal(t, "move me", updated.Title)
	assert.Nil(t, updated.Labels)
	require.NotNil(t, updated.SprintID)
	assert.Equal(t, int64(4), *updated.SprintID)
}

func TestSQLTableStoreUpdateMissingRowReturnsNil(t *testing.T) {
	store := newTestStore(t)

	row, err := store.UpdateByID(context.Background(), "tasks", 404, ports.Row{"status": "done"})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestSQLTableStoreConstraintViolationIsStoreError(t *testing.T) {
	store := newTestStore(t)
	created := rowmap.RowToTask(insertTask(t, store, "x", entities.TaskStatusTodo))

	_, err := store.UpdateByID(context.Background(), "tasks", created.ID, ports.Row{"status": "blocked"})

	var storeErr *entities.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "update", storeErr.Op)
}

func TestSQLTableStoreDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := rowmap.RowToTask(insertTask(t, store, "gone", entities.TaskStatusTodo))

	require.NoError(t, store.DeleteByID(ctx, "tasks", created.ID))
	require.NoError(t, store.DeleteByID(ctx, "tasks", created.ID))

	all, err := store.SelectAll(ctx, "tasks", ports.OrderByID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLTableStoreRejectsUnknownColumns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SelectEq(ctx, "tasks", "status; DROP TABLE tasks", "x", ports.OrderByID)
	assert.Error(t, err)

	_, err = store.Insert(ctx, "tasks", ports.Row{"nope": 1})
	assert.Error(t, err)

	_, err = store.SelectAll(ctx, "users", ports.OrderByID)
	assert.Error(t, err)
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	user := &ports.UserRecord{Email: "Dao@Botnoigroup.com", Name: "Dao", Role: entities.RoleMember, PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, int64(1), user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	err := repo.Create(ctx, &ports.UserRecord{Email: "dao@botnoigroup.com", Name: "Again", Role: entities.RoleGuest, PasswordHash: "x"})
	assert.ErrorIs(t, err, ports.ErrEmailTaken)

	byEmail, err := repo.GetByEmail(ctx, "DAO@botnoigroup.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, entities.RoleMember, byEmail.Role)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dao@botnoigroup.com", byID.Email)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ports.ErrUserNotFound)
}
