package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowboard/core/internal/adapters/rowmap"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

// TaskStore issues task operations against the table store. Every call is a
// single round trip and nothing is retried.
type TaskStore struct {
	store  ports.TableStore
	table  string
	logger *logger.Logger
}

// NewTaskStore creates a task store client over table.
func NewTaskStore(store ports.TableStore, table string, logger *logger.Logger) *TaskStore {
	if table == "" {
		table = "tasks"
	}
	return &TaskStore{
		store:  store,
		table:  table,
		logger: logger.WithComponent("task_store"),
	}
}

// ListAll returns every task in ascending id order.
func (s *TaskStore) ListAll(ctx context.Context) ([]entities.Task, error) {
	rows, err := s.store.SelectAll(ctx, s.table, ports.OrderByID)
	if err != nil {
		return nil, err
	}
	return toTasks(rows), nil
}

// GetByID fails with entities.ErrNotFound when no row matches.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (entities.Task, error) {
	rows, err := s.store.SelectEq(ctx, s.table, rowmap.ColID, id, ports.OrderByID)
	if err != nil {
		return entities.Task{}, err
	}
	if len(rows) == 0 {
		return entities.Task{}, fmt.Errorf("task %d: %w", id, entities.ErrNotFound)
	}
	return rowmap.RowToTask(rows[0]), nil
}

// Create submits the supplied fields and returns the stored row.
func (s *TaskStore) Create(ctx context.Context, task entities.NewTask) (entities.Task, error) {
	row, err := s.store.Insert(ctx, s.table, rowmap.InsertPayload(task))
	if err != nil {
		return entities.Task{}, err
	}
	if row == nil {
		return entities.Task{}, &entities.StoreError{Op: "insert", Err: errors.New("failed to create task: no row returned")}
	}

	created := rowmap.RowToTask(row)
	s.logger.Infow("Task created", "task_id", created.ID, "owner_id", created.OwnerID)
	return created, nil
}

// Update submits a sparse patch. An update that matches no row fails with
// entities.ErrNotFound.
func (s *TaskStore) Update(ctx context.Context, id int64, patch entities.TaskPatch) (entities.Task, error) {
	row, err := s.store.UpdateByID(ctx, s.table, id, rowmap.UpdatePayload(patch))
	if err != nil {
		return entities.Task{}, err
	}
	if row == nil {
		return entities.Task{}, fmt.Errorf("task %d: %w", id, entities.ErrNotFound)
	}
	return rowmap.RowToTask(row), nil
}

// Delete removes the row. Deleting an id that does not exist succeeds.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteByID(ctx, s.table, id); err != nil {
		return err
	}
	s.logger.Infow("Task deleted", "task_id", id)
	return nil
}

// ListByStatus returns the tasks of one lane, filtered by the store.
func (s *TaskStore) ListByStatus(ctx context.Context, status entities.TaskStatus) ([]entities.Task, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidLane, status)
	}
	rows, err := s.store.SelectEq(ctx, s.table, rowmap.ColStatus, string(status), ports.OrderByID)
	if err != nil {
		return nil, err
	}
	return toTasks(rows), nil
}

func toTasks(rows []ports.Row) []entities.Task {
	tasks := make([]entities.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, rowmap.RowToTask(row))
	}
	return tasks
}
