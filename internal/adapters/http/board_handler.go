package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flowboard/core/internal/adapters/rowmap"
	"github.com/flowboard/core/internal/application/services"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

// BoardHandler serves the task board of the signed-in viewer.
type BoardHandler struct {
	boards   *services.BoardService
	registry *services.BoardRegistry
	logger   *logger.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(boards *services.BoardService, registry *services.BoardRegistry, logger *logger.Logger) *BoardHandler {
	return &BoardHandler{
		boards:   boards,
		registry: registry,
		logger:   logger,
	}
}

// GetBoard renders the lanes
// @Summary Get board
// @Tags Board
// @Produce json
// @Param priority query string false "all, high, medium or low"
// @Param reload query bool false "Reload from the task store"
// @Success 200 {object} ports.BoardView
// @Failure 400 {object} ports.MessageResponse
// @Security BearerAuth
// @Router /api/board [get]
func (h *BoardHandler) GetBoard(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	board := h.registry.Acquire(ctx, sessionToken(c))
	if reload, _ := strconv.ParseBool(c.QueryParam("reload")); reload {
		board.Load(ctx)
	}

	view, err := h.boards.View(user.Viewer(), board, c.QueryParam("priority"))
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// CreateTask creates a task owned by the viewer
// @Summary Create task
// @Tags Board
// @Accept json
// @Produce json
// @Param body body ports.CreateTaskRequest true "Task"
// @Success 201 {object} entities.Task
// @Failure 403 {object} ports.MessageResponse
// @Failure 502 {object} ports.MessageResponse
// @Security BearerAuth
// @Router /api/tasks [post]
func (h *BoardHandler) CreateTask(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := newTaskFromRequest(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	board := h.registry.Acquire(ctx, sessionToken(c))
	created, err := h.boards.CreateTask(ctx, user.Viewer(), board, task)
	if err != nil {
		h.logger.WithUserID(user.ID).Errorw("Failed to create task", "error", err)
		return MapError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// GetTask returns one task with the viewer's access
// @Summary Get task
// @Tags Board
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} ports.TaskView
// @Failure 404 {object} ports.MessageResponse
// @Security BearerAuth
// @Router /api/tasks/{id} [get]
func (h *BoardHandler) GetTask(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	board := h.registry.Acquire(c.Request().Context(), sessionToken(c))
	task, access, err := h.boards.Access(user.Viewer(), board, id)
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, ports.TaskView{Task: task, Access: access})
}

// UpdateTask saves an edited task. A store failure still answers 200: the
// edit stays on the board and the response carries a warning.
// @Summary Edit task
// @Tags Board
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param body body ports.EditTaskRequest true "Task"
// @Success 200 {object} ports.MutationResponse
// @Failure 403 {object} ports.MessageResponse
// @Failure 404 {object} ports.MessageResponse
// @Security BearerAuth
// @Router /api/tasks/{id} [put]
func (h *BoardHandler) UpdateTask(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req ports.EditTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	edited, err := taskFromEdit(id, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	viewer := user.Viewer()
	board := h.registry.Acquire(c.Request().Context(), sessionToken(c))
	task, err := h.boards.EditTask(c.Request().Context(), viewer, board, edited)

	var mutErr *services.MutationError
	switch {
	case errors.As(err, &mutErr) && mutErr.KeptLocally:
		return c.JSON(http.StatusOK, ports.MutationResponse{
			Task:    &ports.TaskView{Task: task, Access: entities.Authorize(viewer, task.OwnerID)},
			Warning: "Saved on this board only: " + mutErr.Err.Error(),
		})
	case err != nil:
		return MapError(err)
	}
	return c.JSON(http.StatusOK, ports.MutationResponse{
		Task: &ports.TaskView{Task: task, Access: entities.Authorize(viewer, task.OwnerID)},
	})
}

// ChangeStatus moves a task to another lane. A store failure answers 502
// with the reverted task.
// @Summary Change task status
// @Tags Board
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param body body ports.StatusChangeRequest true "Lane"
// @Success 200 {object} ports.MutationResponse
// @Failure 502 {object} ports.MutationResponse
// @Security BearerAuth
// @Router /api/tasks/{id}/status [patch]
func (h *BoardHandler) ChangeStatus(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req ports.StatusChangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	viewer := user.Viewer()
	board := h.registry.Acquire(c.Request().Context(), sessionToken(c))
	task, err := h.boards.ChangeStatus(c.Request().Context(), viewer, board, id, req.Status)

	var mutErr *services.MutationError
	switch {
	case errors.As(err, &mutErr) && mutErr.RolledBack:
		return c.JSON(http.StatusBadGateway, ports.MutationResponse{
			Task:    &ports.TaskView{Task: task, Access: entities.Authorize(viewer, task.OwnerID)},
			Warning: "Status change was reverted: " + mutErr.Err.Error(),
		})
	case err != nil:
		return MapError(err)
	}
	return c.JSON(http.StatusOK, ports.MutationResponse{
		Task: &ports.TaskView{Task: task, Access: entities.Authorize(viewer, task.OwnerID)},
	})
}

// DeleteTask removes a task from the store, then from the board
// @Summary Delete task
// @Tags Board
// @Param id path int true "Task ID"
// @Success 204
// @Failure 403 {object} ports.MessageResponse
// @Failure 502 {object} ports.MessageResponse
// @Security BearerAuth
// @Router /api/tasks/{id} [delete]
func (h *BoardHandler) DeleteTask(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	board := h.registry.Acquire(c.Request().Context(), sessionToken(c))
	if err := h.boards.DeleteTask(c.Request().Context(), user.Viewer(), board, id); err != nil {
		h.logger.Warnw("Failed to delete task", "error", err, "task_id", id)
		return MapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	return id, nil
}

func newTaskFromRequest(req ports.CreateTaskRequest) (entities.NewTask, error) {
	task := entities.NewTask{
		Title:                 req.Title,
		Description:           req.Description,
		Status:                req.Status,
		Priority:              req.Priority,
		Type:                  req.Type,
		Points:                req.Points,
		Assignee:              req.Assignee,
		Reporter:              req.Reporter,
		Impact:                req.Impact,
		Urgency:               req.Urgency,
		PriorityLevel:         req.PriorityLevel,
		CardLevel:             req.CardLevel,
		PlannedEstimatedHours: req.PlannedEstimatedHours,
		ActualEstimatedHours:  req.ActualEstimatedHours,
		Labels:                req.Labels,
		SprintID:              req.SprintID,
		Dependencies:          req.Dependencies,
	}

	dates := []struct {
		name string
		in   entities.Optional[string]
		out  *entities.Optional[time.Time]
	}{
		{"plannedStartDate", req.PlannedStartDate, &task.PlannedStartDate},
		{"plannedEndDate", req.PlannedEndDate, &task.PlannedEndDate},
		{"actualStartDate", req.ActualStartDate, &task.ActualStartDate},
		{"actualEndDate", req.ActualEndDate, &task.ActualEndDate},
	}
	for _, d := range dates {
		parsed, err := optionalDate(d.name, d.in)
		if err != nil {
			return entities.NewTask{}, err
		}
		*d.out = parsed
	}
	return task, nil
}

func taskFromEdit(id int64, req ports.EditTaskRequest) (entities.Task, error) {
	task := entities.Task{
		ID:                    id,
		Title:                 req.Title,
		Description:           req.Description,
		Status:                req.Status,
		Priority:              req.Priority,
		Type:                  req.Type,
		Points:                req.Points,
		Assignee:              req.Assignee,
		Reporter:              req.Reporter,
		Impact:                req.Impact,
		Urgency:               req.Urgency,
		PriorityLevel:         req.PriorityLevel,
		CardLevel:             req.CardLevel,
		PlannedEstimatedHours: req.PlannedEstimatedHours,
		ActualEstimatedHours:  req.ActualEstimatedHours,
		Labels:                req.Labels,
		SprintID:              req.SprintID,
		Dependencies:          req.Dependencies,
	}

	dates := []struct {
		name string
		in   *string
		out  **time.Time
	}{
		{"plannedStartDate", req.PlannedStartDate, &task.PlannedStartDate},
		{"plannedEndDate", req.PlannedEndDate, &task.PlannedEndDate},
		{"actualStartDate", req.ActualStartDate, &task.ActualStartDate},
		{"actualEndDate", req.ActualEndDate, &task.ActualEndDate},
	}
	for _, d := range dates {
		parsed, err := optionalDate(d.name, entities.FromPtr(d.in))
		if err != nil {
			return entities.Task{}, err
		}
		*d.out = parsed.Ptr()
	}
	return task, nil
}

// optionalDate keeps the absent/null/value distinction; an empty string
// counts as null.
func optionalDate(name string, in entities.Optional[string]) (entities.Optional[time.Time], error) {
	s, ok := in.Value()
	if !ok {
		if in.IsNull() {
			return entities.Null[time.Time](), nil
		}
		return entities.Optional[time.Time]{}, nil
	}
	if s == "" {
		return entities.Null[time.Time](), nil
	}
	t, ok := rowmap.ParseTime(s)
	if !ok {
		return entities.Optional[time.Time]{}, fmt.Errorf("%s: invalid date %q", name, s)
	}
	return entities.Some(t), nil
}
