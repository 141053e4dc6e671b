package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
)

func TestTaskStoreListAllOrderedAndEmpty(t *testing.T) {
	ctx := context.Background()

	empty := NewTaskStore(newMemTable(), "tasks", logger.NewNop())
	tasks, err := empty.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	seeded := NewTaskStore(newMemTable(SeedTasks()[2], SeedTasks()[0]), "tasks", logger.NewNop())
	tasks, err = seeded.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(1), tasks[0].ID)
	assert.Equal(t, int64(3), tasks[1].ID)
}

func TestTaskStoreGetByID(t *testing.T) {
	store := NewTaskStore(newMemTable(SeedTasks()...), "tasks", logger.NewNop())

	task, err := store.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Build the authentication API", task.Title)

	_, err = store.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestTaskStoreCreateReturnsStoredRow(t *testing.T) {
	table := newMemTable()
	store := NewTaskStore(table, "tasks", logger.NewNop())
	owner := int64(1)

	created, err := store.Create(context.Background(), entities.NewTask{
		Title:       "Draft release notes",
		Description: "first draft",
		Status:      entities.TaskStatusTodo,
		Assignee:    "Dao",
		OwnerID:     &owner,
	}.WithDefaults())
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, int64(1), created.OwnerID)
	assert.Equal(t, entities.PriorityMedium, created.Priority)
	assert.Equal(t, 1, created.Points)
	require.NotNil(t, created.CreatedAt)
	assert.Nil(t, created.Reporter)
}

func TestTaskStoreCreateWithoutReturnedRowIsStoreError(t *testing.T) {
	table := newMemTable()
	table.emptyInsert = true
	store := NewTaskStore(table, "tasks", logger.NewNop())

	_, err := store.Create(context.Background(), entities.NewTask{Title: "x"})

	var storeErr *entities.StoreError
	assert.True(t, errors.As(err, &storeErr))
}

func TestTaskStoreUpdate(t *testing.T) {
	table := newMemTable(SeedTasks()...)
	store := NewTaskStore(table, "tasks", logger.NewNop())
	ctx := context.Background()

	updated, err := store.Update(ctx, 3, entities.StatusPatch(entities.TaskStatusDone))
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusDone, updated.Status)
	assert.Equal(t, "Fix the mobile layout bug", updated.Title)
	assert.Len(t, table.lastPatch(), 1)

	_, err = store.Update(ctx, 99, entities.StatusPatch(entities.TaskStatusDone))
	assert.ErrorIs(t, err, entities.ErrNotFound)

	table.setFailUpdate(errOffline)
	_, err = store.Update(ctx, 3, entities.StatusPatch(entities.TaskStatusTodo))
	var storeErr *entities.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.ErrorIs(t, err, errOffline)
}

func TestTaskStoreDeleteIsIdempotent(t *testing.T) {
	table := newMemTable(SeedTasks()...)
	store := NewTaskStore(table, "tasks", logger.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, 1))
	require.NoError(t, store.Delete(ctx, 1))

	tasks, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestTaskStoreListByStatus(t *testing.T) {
	store := NewTaskStore(newMemTable(SeedTasks()...), "tasks", logger.NewNop())
	ctx := context.Background()

	todo, err := store.ListByStatus(ctx, entities.TaskStatusTodo)
	require.NoError(t, err)
	require.Len(t, todo, 2)
	assert.Equal(t, int64(1), todo[0].ID)
	assert.Equal(t, int64(2), todo[1].ID)

	_, err = store.ListByStatus(ctx, "blocked")
	assert.ErrorIs(t, err, entities.ErrInvalidLane)
}
