package services

import (
	"context"
	"fmt"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

var laneTitles = map[entities.TaskStatus]string{
	entities.TaskStatusTodo:       "TO DO",
	entities.TaskStatusInProgress: "IN PROGRESS",
	entities.TaskStatusDone:       "DONE",
}

// LaneTitle is the heading shown above a lane.
func LaneTitle(status entities.TaskStatus) string {
	return laneTitles[status]
}

// BoardService executes board intents for a viewer. Every mutation passes the
// authorization gate before anything is sent to the store.
type BoardService struct {
	tasks   TaskClient
	metrics *BoardMetrics
	logger  *logger.Logger
}

// NewBoardService creates a board service over tasks.
func NewBoardService(tasks TaskClient, metrics *BoardMetrics, logger *logger.Logger) *BoardService {
	return &BoardService{
		tasks:   tasks,
		metrics: metrics,
		logger:  logger.WithComponent("board_service"),
	}
}

// NewBoard creates an empty board backed by the service's store.
func (s *BoardService) NewBoard() *Board {
	return NewBoard(s.tasks, s.metrics, s.logger)
}

// CreateTask stores a task owned by the viewer and reloads the board so it
// shows the store's id and timestamps.
func (s *BoardService) CreateTask(ctx context.Context, viewer entities.Viewer, board *Board, task entities.NewTask) (entities.Task, error) {
	if !entities.CanCreate(viewer) {
		s.logger.LogSecurityEvent("create_denied", viewer.ID, "", map[string]interface{}{"role": viewer.Role})
		return entities.Task{}, entities.ErrForbidden
	}

	owner := viewer.ID
	task = task.WithDefaults()
	task.OwnerID = &owner

	created, err := s.tasks.Create(ctx, task)
	s.metrics.mutation(MutationCreate, err)
	if err != nil {
		return entities.Task{}, err
	}

	s.logger.LogUserAction(viewer.ID, "create_task", map[string]interface{}{"task_id": created.ID})
	board.Load(ctx)
	return created, nil
}

// ChangeStatus moves a task to another lane. On failure the returned task is
// the reverted one.
func (s *BoardService) ChangeStatus(ctx context.Context, viewer entities.Viewer, board *Board, id int64, status entities.TaskStatus) (entities.Task, error) {
	if _, err := s.authorize(viewer, board, id, "change_status"); err != nil {
		return entities.Task{}, err
	}

	err := board.ApplyStatusChange(ctx, id, status)
	task, _ := board.Find(id)
	if err == nil {
		s.logger.LogUserAction(viewer.ID, "change_status", map[string]interface{}{"task_id": id, "status": status})
	}
	return task, err
}

// EditTask saves the edited task. On a store failure the edit stays on the
// board and a *MutationError with KeptLocally is returned.
func (s *BoardService) EditTask(ctx context.Context, viewer entities.Viewer, board *Board, edited entities.Task) (entities.Task, error) {
	if _, err := s.authorize(viewer, board, edited.ID, "edit"); err != nil {
		return entities.Task{}, err
	}

	err := board.ApplyEdit(ctx, edited)
	task, _ := board.Find(edited.ID)
	if err == nil {
		s.logger.LogUserAction(viewer.ID, "edit_task", map[string]interface{}{"task_id": edited.ID})
	}
	return task, err
}

// DeleteTask deletes in the store first and removes the task from the board
// only once the store succeeded.
func (s *BoardService) DeleteTask(ctx context.Context, viewer entities.Viewer, board *Board, id int64) error {
	if _, err := s.authorize(viewer, board, id, "delete"); err != nil {
		return err
	}

	err := s.tasks.Delete(ctx, id)
	s.metrics.mutation(MutationDelete, err)
	if err != nil {
		return &MutationError{Kind: MutationDelete, TaskID: id, Err: err}
	}

	board.Remove(id)
	s.logger.LogUserAction(viewer.ID, "delete_task", map[string]interface{}{"task_id": id})
	return nil
}

// Access returns the gate's decision for one task on the board.
func (s *BoardService) Access(viewer entities.Viewer, board *Board, id int64) (entities.Task, entities.Access, error) {
	task, ok := board.Find(id)
	if !ok {
		return entities.Task{}, "", fmt.Errorf("task %d: %w", id, entities.ErrNotFound)
	}
	return task, entities.Authorize(viewer, task.OwnerID), nil
}

// View renders the board for viewer: lanes in display order with counts,
// each task annotated with what the viewer may do with it.
func (s *BoardService) View(viewer entities.Viewer, board *Board, priority string) (ports.BoardView, error) {
	tasks, err := board.Filter(priority)
	if err != nil {
		return ports.BoardView{}, err
	}
	if priority == "" {
		priority = "all"
	}

	view := ports.BoardView{
		Viewer:    viewer,
		CanCreate: entities.CanCreate(viewer),
		Filter:    priority,
		Fallback:  board.Fallback(),
		Lanes:     make([]ports.LaneView, 0, len(entities.Lanes)),
	}
	for _, status := range entities.Lanes {
		lane := ports.LaneView{Status: status, Title: LaneTitle(status), Tasks: []ports.TaskView{}}
		for _, t := range tasks {
			if t.Status == status {
				lane.Tasks = append(lane.Tasks, ports.TaskView{Task: t, Access: entities.Authorize(viewer, t.OwnerID)})
			}
		}
		lane.Count = len(lane.Tasks)
		view.Lanes = append(view.Lanes, lane)
	}
	return view, nil
}

func (s *BoardService) authorize(viewer entities.Viewer, board *Board, id int64, action string) (entities.Task, error) {
	task, access, err := s.Access(viewer, board, id)
	if err != nil {
		return entities.Task{}, err
	}
	if !access.CanMutate() {
		s.logger.LogSecurityEvent(action+"_denied", viewer.ID, "", map[string]interface{}{
			"task_id":  id,
			"owner_id": task.OwnerID,
			"access":   access,
		})
		return entities.Task{}, entities.ErrForbidden
	}
	return task, nil
}
