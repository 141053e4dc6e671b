package ports

import (
	"github.com/flowboard/core/internal/domain/entities"
)

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required,max=100"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  *entities.User `json:"user"`
	Token string         `json:"token"`
}

// Task related types

// CreateTaskRequest is the body of the creation form. Optional fields keep
// track of whether the client sent them.
type CreateTaskRequest struct {
	Title         string                                    `json:"title" validate:"required"`
	Description   string                                    `json:"description" validate:"required"`
	Status        entities.TaskStatus                       `json:"status" validate:"omitempty,oneof=todo inprogress done"`
	Priority      entities.Priority                         `json:"priority" validate:"omitempty,oneof=low medium high"`
	Type          entities.TaskType                         `json:"type" validate:"omitempty,oneof=task bug story design"`
	Points        int                                       `json:"points" validate:"gte=0"`
	Assignee      string                                    `json:"assignee" validate:"required"`
	Reporter      entities.Optional[string]                 `json:"reporter"`
	Impact        entities.Optional[entities.Level]         `json:"impact" validate:"omitempty,oneof=high medium low"`
	Urgency       entities.Optional[entities.Level]         `json:"urgency" validate:"omitempty,oneof=high medium low"`
	PriorityLevel entities.Optional[entities.PriorityLevel] `json:"priorityLevel" validate:"omitempty,oneof=P0 P1 P2 P3"`
	CardLevel     entities.Optional[entities.CardLevel]     `json:"cardLevel" validate:"omitempty,oneof=epic task bug story risk subtask"`

	PlannedStartDate entities.Optional[string] `json:"plannedStartDate"`
	PlannedEndDate   entities.Optional[string] `json:"plannedEndDate"`
	ActualStartDate  entities.Optional[string] `json:"actualStartDate"`
	ActualEndDate    entities.Optional[string] `json:"actualEndDate"`

	PlannedEstimatedHours entities.Optional[float64] `json:"plannedEstimatedHours" validate:"omitempty,gte=0"`
	ActualEstimatedHours  entities.Optional[float64] `json:"actualEstimatedHours" validate:"omitempty,gte=0"`

	Labels       entities.Optional[[]string] `json:"labels"`
	SprintID     entities.Optional[int64]    `json:"sprintId"`
	Dependencies entities.Optional[[]int64]  `json:"dependencies"`
}

// EditTaskRequest is the full task an edit panel submits.
type EditTaskRequest struct {
	Title         string                  `json:"title" validate:"required"`
	Description   string                  `json:"description" validate:"required"`
	Status        entities.TaskStatus     `json:"status" validate:"required,oneof=todo inprogress done"`
	Priority      entities.Priority       `json:"priority" validate:"required,oneof=low medium high"`
	Type          entities.TaskType       `json:"type" validate:"required,oneof=task bug story design"`
	Points        int                     `json:"points" validate:"gte=1"`
	Assignee      string                  `json:"assignee" validate:"required"`
	Reporter      *string                 `json:"reporter"`
	Impact        *entities.Level         `json:"impact" validate:"omitempty,oneof=high medium low"`
	Urgency       *entities.Level         `json:"urgency" validate:"omitempty,oneof=high medium low"`
	PriorityLevel *entities.PriorityLevel `json:"priorityLevel" validate:"omitempty,oneof=P0 P1 P2 P3"`
	CardLevel     *entities.CardLevel     `json:"cardLevel" validate:"omitempty,oneof=epic task bug story risk subtask"`

	PlannedStartDate *string `json:"plannedStartDate"`
	PlannedEndDate   *string `json:"plannedEndDate"`
	ActualStartDate  *string `json:"actualStartDate"`
	ActualEndDate    *string `json:"actualEndDate"`

	PlannedEstimatedHours *float64 `json:"plannedEstimatedHours" validate:"omitempty,gte=0"`
	ActualEstimatedHours  *float64 `json:"actualEstimatedHours" validate:"omitempty,gte=0"`

	Labels       []string `json:"labels"`
	SprintID     *int64   `json:"sprintId"`
	Dependencies []int64  `json:"dependencies"`
}

type StatusChangeRequest struct {
	Status entities.TaskStatus `json:"status" validate:"required,oneof=todo inprogress done"`
}

// TaskView is a task together with what the current viewer may do with it.
type TaskView struct {
	entities.Task
	Access entities.Access `json:"access"`
}

type LaneView struct {
	Status entities.TaskStatus `json:"status"`
	Title  string              `json:"title"`
	Count  int                 `json:"count"`
	Tasks  []TaskView          `json:"tasks"`
}

type BoardView struct {
	Viewer    entities.Viewer `json:"viewer"`
	CanCreate bool            `json:"canCreate"`
	Filter    string          `json:"filter"`
	Fallback  bool            `json:"fallback"`
	Lanes     []LaneView      `json:"lanes"`
}

type MutationResponse struct {
	Task    *TaskView `json:"task,omitempty"`
	Warning string    `json:"warning,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
