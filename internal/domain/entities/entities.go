package entities

import (
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrNotFound     = errors.New("task not found")
	ErrForbidden    = errors.New("insufficient permissions")
	ErrInvalidLane  = errors.New("invalid status")
	ErrUnauthorized = errors.New("not authenticated")
)

// StoreError covers constraint violations, malformed payloads and transport
// failures reported by the table store. They are not distinguished further.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// AuthError carries an identity provider failure verbatim.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Enums and types
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "inprogress"
	TaskStatusDone       TaskStatus = "done"
)

// Lanes lists the board columns in display order.
var Lanes = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type TaskType string

const (
	TaskTypeTask   TaskType = "task"
	TaskTypeBug    TaskType = "bug"
	TaskTypeStory  TaskType = "story"
	TaskTypeDesign TaskType = "design"
)

// Level is shared by impact and urgency.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

type PriorityLevel string

const (
	PriorityLevelP0 PriorityLevel = "P0"
	PriorityLevelP1 PriorityLevel = "P1"
	PriorityLevelP2 PriorityLevel = "P2"
	PriorityLevelP3 PriorityLevel = "P3"
)

type CardLevel string

const (
	CardLevelEpic    CardLevel = "epic"
	CardLevelTask    CardLevel = "task"
	CardLevelBug     CardLevel = "bug"
	CardLevelStory   CardLevel = "story"
	CardLevelRisk    CardLevel = "risk"
	CardLevelSubtask CardLevel = "subtask"
)

// Task is the sole persisted entity. Optional fields are nil when absent.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	Type        TaskType   `json:"type"`
	Points      int        `json:"points"`
	Assignee    string     `json:"assignee"`

	Reporter      *string        `json:"reporter,omitempty"`
	Impact        *Level         `json:"impact,omitempty"`
	Urgency       *Level         `json:"urgency,omitempty"`
	PriorityLevel *PriorityLevel `json:"priorityLevel,omitempty"`
	CardLevel     *CardLevel     `json:"cardLevel,omitempty"`

	PlannedStartDate *time.Time `json:"plannedStartDate"`
	PlannedEndDate   *time.Time `json:"plannedEndDate"`
	ActualStartDate  *time.Time `json:"actualStartDate"`
	ActualEndDate    *time.Time `json:"actualEndDate"`

	PlannedEstimatedHours *float64 `json:"plannedEstimatedHours"`
	ActualEstimatedHours  *float64 `json:"actualEstimatedHours"`

	Labels       []string `json:"labels,omitempty"`
	SprintID     *int64   `json:"sprintId"`
	Dependencies []int64  `json:"dependencies,omitempty"`

	OwnerID   int64      `json:"ownerId"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// NewTask is the field set submitted by the creation flow. The store assigns
// the id and timestamps. Optional fields that are unset are left to the
// store's defaults; a set null is written as an explicit null.
type NewTask struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    Priority
	Type        TaskType
	Points      int
	Assignee    string

	Reporter      Optional[string]
	Impact        Optional[Level]
	Urgency       Optional[Level]
	PriorityLevel Optional[PriorityLevel]
	CardLevel     Optional[CardLevel]

	PlannedStartDate Optional[time.Time]
	PlannedEndDate   Optional[time.Time]
	ActualStartDate  Optional[time.Time]
	ActualEndDate    Optional[time.Time]

	PlannedEstimatedHours Optional[float64]
	ActualEstimatedHours  Optional[float64]

	Labels       Optional[[]string]
	SprintID     Optional[int64]
	Dependencies Optional[[]int64]

	OwnerID *int64
}

// WithDefaults fills status, priority, type and points when left empty.
func (n NewTask) WithDefaults() NewTask {
	if n.Status == "" {
		n.Status = TaskStatusTodo
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	if n.Type == "" {
		n.Type = TaskTypeTask
	}
	if n.Points == 0 {
		n.Points = 1
	}
	return n
}

// TaskPatch is a sparse update. Only set fields are sent to the store; a set
// field holding nil clears the column.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[TaskStatus]
	Priority    Optional[Priority]
	Type        Optional[TaskType]
	Points      Optional[int]
	Assignee    Optional[string]

	Reporter      Optional[string]
	Impact        Optional[Level]
	Urgency       Optional[Level]
	PriorityLevel Optional[PriorityLevel]
	CardLevel     Optional[CardLevel]

	PlannedStartDate Optional[time.Time]
	PlannedEndDate   Optional[time.Time]
	ActualStartDate  Optional[time.Time]
	ActualEndDate    Optional[time.Time]

	PlannedEstimatedHours Optional[float64]
	ActualEstimatedHours  Optional[float64]

	Labels       Optional[[]string]
	SprintID     Optional[int64]
	Dependencies Optional[[]int64]

	OwnerID Optional[int64]
}

// StatusPatch touches only the status column.
func StatusPatch(status TaskStatus) TaskPatch {
	return TaskPatch{Status: Some(status)}
}

// FullPatch builds the patch an edit panel submits: every editable field of t.
// Optional fields that are nil on t are sent as explicit clears. The owner is
// never part of an edit.
func FullPatch(t Task) TaskPatch {
	p := TaskPatch{
		Title:       Some(t.Title),
		Description: Some(t.Description),
		Status:      Some(t.Status),
		Priority:    Some(t.Priority),
		Type:        Some(t.Type),
		Points:      Some(t.Points),
		Assignee:    Some(t.Assignee),

		Reporter:      FromPtr(t.Reporter),
		Impact:        FromPtr(t.Impact),
		Urgency:       FromPtr(t.Urgency),
		PriorityLevel: FromPtr(t.PriorityLevel),
		CardLevel:     FromPtr(t.CardLevel),

		PlannedStartDate: FromPtr(t.PlannedStartDate),
		PlannedEndDate:   FromPtr(t.PlannedEndDate),
		ActualStartDate:  FromPtr(t.ActualStartDate),
		ActualEndDate:    FromPtr(t.ActualEndDate),

		PlannedEstimatedHours: FromPtr(t.PlannedEstimatedHours),
		ActualEstimatedHours:  FromPtr(t.ActualEstimatedHours),

		SprintID: FromPtr(t.SprintID),
	}
	if t.Labels != nil {
		p.Labels = Some(t.Labels)
	} else {
		p.Labels = Null[[]string]()
	}
	if t.Dependencies != nil {
		p.Dependencies = Some(t.Dependencies)
	} else {
		p.Dependencies = Null[[]int64]()
	}
	return p
}

// Apply returns a copy of t with the patch applied locally.
func (p TaskPatch) Apply(t Task) Task {
	if v, ok := p.Title.Value(); ok {
		t.Title = v
	}
	if v, ok := p.Description.Value(); ok {
		t.Description = v
	}
	if v, ok := p.Status.Value(); ok {
		t.Status = v
	}
	if v, ok := p.Priority.Value(); ok {
		t.Priority = v
	}
	if v, ok := p.Type.Value(); ok {
		t.Type = v
	}
	if v, ok := p.Points.Value(); ok {
		t.Points = v
	}
	if v, ok := p.Assignee.Value(); ok {
		t.Assignee = v
	}
	p.Reporter.applyTo(&t.Reporter)
	p.Impact.applyTo(&t.Impact)
	p.Urgency.applyTo(&t.Urgency)
	p.PriorityLevel.applyTo(&t.PriorityLevel)
	p.CardLevel.applyTo(&t.CardLevel)
	p.PlannedStartDate.applyTo(&t.PlannedStartDate)
	p.PlannedEndDate.applyTo(&t.PlannedEndDate)
	p.ActualStartDate.applyTo(&t.ActualStartDate)
	p.ActualEndDate.applyTo(&t.ActualEndDate)
	p.PlannedEstimatedHours.applyTo(&t.PlannedEstimatedHours)
	p.ActualEstimatedHours.applyTo(&t.ActualEstimatedHours)
	p.SprintID.applyTo(&t.SprintID)
	if p.Labels.IsSet() {
		t.Labels = p.Labels.OrZero()
	}
	if p.Dependencies.IsSet() {
		t.Dependencies = p.Dependencies.OrZero()
	}
	if v, ok := p.OwnerID.Value(); ok {
		t.OwnerID = v
	}
	return t
}

// Clone returns a deep copy so callers cannot alias board state.
func (t Task) Clone() Task {
	c := t
	c.Reporter = clonePtr(t.Reporter)
	c.Impact = clonePtr(t.Impact)
	c.Urgency = clonePtr(t.Urgency)
	c.PriorityLevel = clonePtr(t.PriorityLevel)
	c.CardLevel = clonePtr(t.CardLevel)
	c.PlannedStartDate = clonePtr(t.PlannedStartDate)
	c.PlannedEndDate = clonePtr(t.PlannedEndDate)
	c.ActualStartDate = clonePtr(t.ActualStartDate)
	c.ActualEndDate = clonePtr(t.ActualEndDate)
	c.PlannedEstimatedHours = clonePtr(t.PlannedEstimatedHours)
	c.ActualEstimatedHours = clonePtr(t.ActualEstimatedHours)
	c.SprintID = clonePtr(t.SprintID)
	c.CreatedAt = clonePtr(t.CreatedAt)
	c.UpdatedAt = clonePtr(t.UpdatedAt)
	if t.Labels != nil {
		c.Labels = append([]string{}, t.Labels...)
	}
	if t.Dependencies != nil {
		c.Dependencies = append([]int64{}, t.Dependencies...)
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// User is the signed-in identity as seen by the board.
type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Viewer returns the authorization input for u.
func (u User) Viewer() Viewer {
	return Viewer{ID: u.ID, Role: u.Role}
}

// Validation methods
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeTask, TaskTypeBug, TaskTypeStory, TaskTypeDesign:
		return true
	}
	return false
}

func (l Level) IsValid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow:
		return true
	}
	return false
}

func (p PriorityLevel) IsValid() bool {
	switch p {
	case PriorityLevelP0, PriorityLevelP1, PriorityLevelP2, PriorityLevelP3:
		return true
	}
	return false
}

func (c CardLevel) IsValid() bool {
	switch c {
	case CardLevelEpic, CardLevelTask, CardLevelBug, CardLevelStory, CardLevelRisk, CardLevelSubtask:
		return true
	}
	return false
}
