package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
)

// TaskClient is the part of the task store the board drives.
type TaskClient interface {
	ListAll(ctx context.Context) ([]entities.Task, error)
	Create(ctx context.Context, task entities.NewTask) (entities.Task, error)
	Update(ctx context.Context, id int64, patch entities.TaskPatch) (entities.Task, error)
	Delete(ctx context.Context, id int64) error
}

// ErrInvalidFilter is returned for a priority filter that is neither a
// priority nor "all".
var ErrInvalidFilter = errors.New("invalid priority filter")

// MutationKind names the intent a MutationError belongs to.
type MutationKind string

const (
	MutationStatusChange MutationKind = "status_change"
	MutationEdit         MutationKind = "edit"
	MutationDelete       MutationKind = "delete"
	MutationCreate       MutationKind = "create"
)

// MutationError reports a failed remote call together with what happened to
// the local board. A status change is rolled back; an edit is kept.
type MutationError struct {
	Kind        MutationKind
	TaskID      int64
	RolledBack  bool
	KeptLocally bool
	Err         error
}

func (e *MutationError) Error() string {
	switch {
	case e.RolledBack:
		return fmt.Sprintf("%s of task %d failed and was reverted: %v", e.Kind, e.TaskID, e.Err)
	case e.KeptLocally:
		return fmt.Sprintf("%s of task %d was kept locally but not saved: %v", e.Kind, e.TaskID, e.Err)
	}
	return fmt.Sprintf("%s of task %d failed: %v", e.Kind, e.TaskID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// LoadResult describes how the board got its tasks.
type LoadResult struct {
	Count    int
	Fallback bool
	Err      error
}

// Board holds the task list of one viewer session. Remote calls are made
// without holding the lock; when two of them race the last response wins.
type Board struct {
	mu       sync.Mutex
	tasks    []entities.Task
	loaded   bool
	fallback bool

	store   TaskClient
	metrics *BoardMetrics
	logger  *logger.Logger
}

// NewBoard creates an empty board over store.
func NewBoard(store TaskClient, metrics *BoardMetrics, logger *logger.Logger) *Board {
	return &Board{
		store:   store,
		metrics: metrics,
		logger:  logger.WithComponent("board"),
	}
}

// Load replaces the board with the store's tasks. When the store cannot be
// read the seed list is installed instead and Fallback is set.
func (b *Board) Load(ctx context.Context) LoadResult {
	tasks, err := b.store.ListAll(ctx)
	if err != nil {
		b.logger.Warnw("Loading tasks failed, showing seed board", "error", err)
		b.metrics.fallback()
		tasks = SeedTasks()
	}

	b.mu.Lock()
	b.tasks = tasks
	b.loaded = true
	b.fallback = err != nil
	b.mu.Unlock()

	return LoadResult{Count: len(tasks), Fallback: err != nil, Err: err}
}

// EnsureLoaded loads the board once.
func (b *Board) EnsureLoaded(ctx context.Context) {
	b.mu.Lock()
	loaded := b.loaded
	b.mu.Unlock()
	if !loaded {
		b.Load(ctx)
	}
}

// ApplyStatusChange moves a task to another lane before the store confirms
// it. If the update fails the whole list is restored to what it was before
// the call.
func (b *Board) ApplyStatusChange(ctx context.Context, id int64, status entities.TaskStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", entities.ErrInvalidLane, status)
	}

	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return fmt.Errorf("task %d: %w", id, entities.ErrNotFound)
	}
	snapshot := cloneTasks(b.tasks)
	b.tasks[idx].Status = status
	b.mu.Unlock()

	_, err := b.store.Update(ctx, id, entities.StatusPatch(status))
	b.metrics.mutation(MutationStatusChange, err)
	if err != nil {
		b.mu.Lock()
		b.tasks = snapshot
		b.mu.Unlock()

		b.metrics.rollback()
		b.logger.Warnw("Status change reverted", "task_id", id, "status", status, "error", err)
		return &MutationError{Kind: MutationStatusChange, TaskID: id, RolledBack: true, Err: err}
	}
	return nil
}

// ApplyEdit submits every editable field of edited. The board keeps the
// caller's version whether or not the store accepted it. Id, owner and
// timestamps stay as the board has them.
func (b *Board) ApplyEdit(ctx context.Context, edited entities.Task) error {
	b.mu.Lock()
	idx := b.indexOf(edited.ID)
	if idx < 0 {
		b.mu.Unlock()
		return fmt.Errorf("task %d: %w", edited.ID, entities.ErrNotFound)
	}
	current := b.tasks[idx]
	b.mu.Unlock()

	edited = edited.Clone()
	edited.OwnerID = current.OwnerID
	edited.CreatedAt = current.CreatedAt
	edited.UpdatedAt = current.UpdatedAt

	_, err := b.store.Update(ctx, edited.ID, entities.FullPatch(edited))
	b.metrics.mutation(MutationEdit, err)

	b.mu.Lock()
	if i := b.indexOf(edited.ID); i >= 0 {
		b.tasks[i] = edited
	}
	b.mu.Unlock()

	if err != nil {
		b.metrics.editKeptLocal()
		b.logger.Warnw("Edit kept locally", "task_id", edited.ID, "error", err)
		return &MutationError{Kind: MutationEdit, TaskID: edited.ID, KeptLocally: true, Err: err}
	}
	return nil
}

// Remove drops a task from the board without contacting the store.
func (b *Board) Remove(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return false
	}
	b.tasks = append(b.tasks[:idx], b.tasks[idx+1:]...)
	return true
}

// Tasks returns a copy of the board in load order.
func (b *Board) Tasks() []entities.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneTasks(b.tasks)
}

// Find returns a copy of one task.
func (b *Board) Find(id int64) (entities.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return entities.Task{}, false
	}
	return b.tasks[idx].Clone(), true
}

// Lane returns the tasks in one status column.
func (b *Board) Lane(status entities.TaskStatus) []entities.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	lane := []entities.Task{}
	for _, t := range b.tasks {
		if t.Status == status {
			lane = append(lane, t.Clone())
		}
	}
	return lane
}

// Filter returns the tasks of the given priority; "" and "all" return
// everything.
func (b *Board) Filter(priority string) ([]entities.Task, error) {
	if priority == "" || priority == "all" {
		return b.Tasks(), nil
	}
	p := entities.Priority(priority)
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, priority)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []entities.Task{}
	for _, t := range b.tasks {
		if t.Priority == p {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// LaneCounts returns the number of tasks per lane.
func (b *Board) LaneCounts() map[entities.TaskStatus]int {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make(map[entities.TaskStatus]int, len(entities.Lanes))
	for _, lane := range entities.Lanes {
		counts[lane] = 0
	}
	for _, t := range b.tasks {
		counts[t.Status]++
	}
	return counts
}

// Fallback reports whether the board currently shows the seed list.
func (b *Board) Fallback() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fallback
}

func (b *Board) indexOf(id int64) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []entities.Task) []entities.Task {
	out := make([]entities.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
