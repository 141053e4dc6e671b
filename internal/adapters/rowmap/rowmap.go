// Package rowmap translates between persisted task rows (flat, snake_case,
// nullable columns) and the in-memory task entity. It never validates and
// never fails: malformed input only surfaces as a store error later.
package rowmap

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/ports"
)

// Column names of the tasks table.
const (
	ColID                    = "id"
	ColTitle                 = "title"
	ColDescription           = "description"
	ColStatus                = "status"
	ColPriority              = "priority"
	ColType                  = "type"
	ColPoints                = "points"
	ColAssignee              = "assignee"
	ColReporter              = "reporter"
	ColImpact                = "impact"
	ColUrgency               = "urgency"
	ColPriorityLevel         = "priority_level"
	ColPlannedStartDate      = "planned_start_date"
	ColPlannedEndDate        = "planned_end_date"
	ColActualStartDate       = "actual_start_date"
	ColActualEndDate         = "actual_end_date"
	ColPlannedEstimatedHours = "planned_estimated_hours"
	ColActualEstimatedHours  = "actual_estimated_hours"
	ColLabels                = "labels"
	ColCardLevel             = "card_level"
	ColSprintID              = "sprint_id"
	ColDependencies          = "dependencies"
	ColOwnerID               = "owner_id"
	ColCreatedAt             = "created_at"
	ColUpdatedAt             = "updated_at"

	// legacyOwnerKey is accepted on read for rows written before the column
	// was renamed.
	legacyOwnerKey = "ownerId"
)

// Columns lists every column of the tasks table.
var Columns = []string{
	ColID, ColTitle, ColDescription, ColStatus, ColPriority, ColType, ColPoints,
	ColAssignee, ColReporter, ColImpact, ColUrgency, ColPriorityLevel,
	ColPlannedStartDate, ColPlannedEndDate, ColActualStartDate, ColActualEndDate,
	ColPlannedEstimatedHours, ColActualEstimatedHours, ColLabels, ColCardLevel,
	ColSprintID, ColDependencies, ColOwnerID, ColCreatedAt, ColUpdatedAt,
}

// RowToTask builds a task from a stored row. Absent or null columns map to
// nil, never to a default.
func RowToTask(row ports.Row) entities.Task {
	t := entities.Task{
		ID:          toInt64(row[ColID]),
		Title:       toString(row[ColTitle]),
		Description: toString(row[ColDescription]),
		Status:      entities.TaskStatus(toString(row[ColStatus])),
		Priority:    entities.Priority(toString(row[ColPriority])),
		Type:        entities.TaskType(toString(row[ColType])),
		Points:      int(toInt64(row[ColPoints])),
		Assignee:    toString(row[ColAssignee]),

		Reporter:      stringPtr(row[ColReporter]),
		Impact:        enumPtr[entities.Level](row[ColImpact]),
		Urgency:       enumPtr[entities.Level](row[ColUrgency]),
		PriorityLevel: enumPtr[entities.PriorityLevel](row[ColPriorityLevel]),
		CardLevel:     enumPtr[entities.CardLevel](row[ColCardLevel]),

		PlannedStartDate: timePtr(row[ColPlannedStartDate]),
		PlannedEndDate:   timePtr(row[ColPlannedEndDate]),
		ActualStartDate:  timePtr(row[ColActualStartDate]),
		ActualEndDate:    timePtr(row[ColActualEndDate]),

		PlannedEstimatedHours: floatPtr(row[ColPlannedEstimatedHours]),
		ActualEstimatedHours:  floatPtr(row[ColActualEstimatedHours]),

		Labels:       toStrings(row[ColLabels]),
		SprintID:     int64Ptr(row[ColSprintID]),
		Dependencies: toInt64s(row[ColDependencies]),

		CreatedAt: timePtr(row[ColCreatedAt]),
		UpdatedAt: timePtr(row[ColUpdatedAt]),
	}

	if v, ok := row[legacyOwnerKey]; ok && v != nil {
		t.OwnerID = toInt64(v)
	} else {
		t.OwnerID = toInt64(row[ColOwnerID])
	}
	return t
}

// InsertPayload builds the row for a new task. Required fields are always
// written; optional ones only when the caller supplied them.
func InsertPayload(n entities.NewTask) ports.Row {
	row := ports.Row{
		ColTitle:       n.Title,
		ColDescription: n.Description,
		ColStatus:      string(n.Status),
		ColPriority:    string(n.Priority),
		ColAssignee:    n.Assignee,
		ColType:        string(n.Type),
		ColPoints:      n.Points,
	}

	putEnum(row, ColReporter, n.Reporter)
	putEnum(row, ColImpact, n.Impact)
	putEnum(row, ColUrgency, n.Urgency)
	putEnum(row, ColPriorityLevel, n.PriorityLevel)
	putEnum(row, ColCardLevel, n.CardLevel)
	putDate(row, ColPlannedStartDate, n.PlannedStartDate)
	putDate(row, ColPlannedEndDate, n.PlannedEndDate)
	putDate(row, ColActualStartDate, n.ActualStartDate)
	putDate(row, ColActualEndDate, n.ActualEndDate)
	put(row, ColPlannedEstimatedHours, n.PlannedEstimatedHours)
	put(row, ColActualEstimatedHours, n.ActualEstimatedHours)
	put(row, ColLabels, n.Labels)
	put(row, ColSprintID, n.SprintID)
	put(row, ColDependencies, n.Dependencies)
	if n.OwnerID != nil {
		row[ColOwnerID] = *n.OwnerID
	}
	return row
}

// UpdatePayload builds a sparse patch: a column appears iff its field is set.
func UpdatePayload(p entities.TaskPatch) ports.Row {
	row := ports.Row{}
	putEnum(row, ColTitle, p.Title)
	putEnum(row, ColDescription, p.Description)
	putEnum(row, ColStatus, p.Status)
	putEnum(row, ColPriority, p.Priority)
	putEnum(row, ColAssignee, p.Assignee)
	putEnum(row, ColType, p.Type)
	put(row, ColPoints, p.Points)
	putEnum(row, ColReporter, p.Reporter)
	putEnum(row, ColImpact, p.Impact)
	putEnum(row, ColUrgency, p.Urgency)
	putEnum(row, ColPriorityLevel, p.PriorityLevel)
	putDate(row, ColPlannedStartDate, p.PlannedStartDate)
	putDate(row, ColPlannedEndDate, p.PlannedEndDate)
	putDate(row, ColActualStartDate, p.ActualStartDate)
	putDate(row, ColActualEndDate, p.ActualEndDate)
	put(row, ColPlannedEstimatedHours, p.PlannedEstimatedHours)
	put(row, ColActualEstimatedHours, p.ActualEstimatedHours)
	put(row, ColLabels, p.Labels)
	putEnum(row, ColCardLevel, p.CardLevel)
	put(row, ColSprintID, p.SprintID)
	put(row, ColDependencies, p.Dependencies)
	put(row, ColOwnerID, p.OwnerID)
	return row
}

func put[T any](row ports.Row, col string, o entities.Optional[T]) {
	if !o.IsSet() {
		return
	}
	if v, ok := o.Value(); ok {
		row[col] = v
		return
	}
	row[col] = nil
}

// putEnum writes string-kinded values as plain strings so every backend sees
// the same JSON.
func putEnum[T ~string](row ports.Row, col string, o entities.Optional[T]) {
	if !o.IsSet() {
		return
	}
	if v, ok := o.Value(); ok {
		row[col] = string(v)
		return
	}
	row[col] = nil
}

func putDate(row ports.Row, col string, o entities.Optional[time.Time]) {
	if !o.IsSet() {
		return
	}
	if v, ok := o.Value(); ok {
		row[col] = v.UTC().Format(time.RFC3339Nano)
		return
	}
	row[col] = nil
}

// dateLayouts are tried in order when a date column arrives as text.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// ParseTime accepts the textual date forms the supported stores produce.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func timePtr(v any) *time.Time {
	switch x := v.(type) {
	case time.Time:
		return &x
	case *time.Time:
		if x == nil {
			return nil
		}
		t := *x
		return &t
	case string:
		if t, ok := ParseTime(x); ok {
			return &t
		}
	case []byte:
		return timePtr(string(x))
	}
	return nil
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case nil:
		return ""
	}
	return ""
}

func stringPtr(v any) *string {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case string, []byte:
		s := toString(v)
		return &s
	}
	return nil
}

func enumPtr[T ~string](v any) *T {
	s := stringPtr(v)
	if s == nil {
		return nil
	}
	e := T(*s)
	return &e
}

func toInt64(v any) int64 {
	n, _ := asInt64(v)
	return n
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	case []byte:
		return asInt64(string(x))
	}
	return 0, false
}

func int64Ptr(v any) *int64 {
	if n, ok := asInt64(v); ok {
		return &n
	}
	return nil
}

func floatPtr(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return nil
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = n
	case []byte:
		return floatPtr(string(x))
	default:
		return nil
	}
	return &f
}

// toStrings accepts JSON arrays, typed slices, or JSON text (sqlite/jsonb).
func toStrings(v any) []string {
	switch x := v.(type) {
	case []string:
		return append([]string{}, x...)
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, toString(e))
		}
		return out
	case string:
		var out []string
		if json.Unmarshal([]byte(x), &out) == nil {
			return out
		}
	case []byte:
		return toStrings(string(x))
	}
	return nil
}

func toInt64s(v any) []int64 {
	switch x := v.(type) {
	case []int64:
		return append([]int64{}, x...)
	case []any:
		out := make([]int64, 0, len(x))
		for _, e := range x {
			out = append(out, toInt64(e))
		}
		return out
	case string:
		var out []int64
		if json.Unmarshal([]byte(x), &out) == nil {
			return out
		}
	case []byte:
		return toInt64s(string(x))
	}
	return nil
}
