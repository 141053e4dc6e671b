package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		viewer Viewer
		owner  int64
		want   Access
	}{
		{"member owner", Viewer{ID: 1, Role: RoleMember}, 1, AccessEditor},
		{"guest owner", Viewer{ID: 1, Role: RoleGuest}, 1, AccessReadOnlyOwner},
		{"member other", Viewer{ID: 2, Role: RoleMember}, 1, AccessViewer},
		{"guest other", Viewer{ID: 2, Role: RoleGuest}, 1, AccessViewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.viewer, tt.owner)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == AccessEditor, got.CanMutate())
		})
	}

	assert.True(t, CanCreate(Viewer{Role: RoleMember}))
	assert.False(t, CanCreate(Viewer{Role: RoleGuest}))
}

func TestResolveRole(t *testing.T) {
	assert.Equal(t, RoleMember, DeriveRole("Dao@BotnoiGroup.com", "@botnoigroup.com"))
	assert.Equal(t, RoleGuest, DeriveRole("dao@gmail.com", "botnoigroup.com"))
	assert.Equal(t, RoleGuest, DeriveRole("dao@botnoigroup.com", ""))
	assert.Equal(t, RoleGuest, DeriveRole("dao@notbotnoigroup.com.evil", "botnoigroup.com"))

	assert.Equal(t, RoleGuest, ResolveRole(map[string]any{"role": "guest"}, "dao@botnoigroup.com", "botnoigroup.com"))
	assert.Equal(t, RoleMember, ResolveRole(map[string]any{"role": "admin"}, "dao@botnoigroup.com", "botnoigroup.com"))
	assert.Equal(t, RoleGuest, ResolveRole(nil, "dao@gmail.com", "botnoigroup.com"))
}

func TestOptionalJSON(t *testing.T) {
	var body struct {
		A Optional[int] `json:"a"`
		B Optional[int] `json:"b"`
		C Optional[int] `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": null}`), &body))

	v, ok := body.A.Value()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.True(t, body.B.IsNull())
	assert.False(t, body.C.IsSet())

	out, err := json.Marshal(body.B)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestPatchApply(t *testing.T) {
	reporter := "Dao"
	hours := 4.5
	task := Task{ID: 1, Title: "old", Status: TaskStatusTodo, Reporter: &reporter, PlannedEstimatedHours: &hours, OwnerID: 7}

	got := StatusPatch(TaskStatusDone).Apply(task)
	assert.Equal(t, TaskStatusDone, got.Status)
	assert.Equal(t, "old", got.Title)
	assert.Equal(t, &reporter, got.Reporter)

	patch := TaskPatch{Title: Some("new"), Reporter: Null[string]()}
	got = patch.Apply(task)
	assert.Equal(t, "new", got.Title)
	assert.Nil(t, got.Reporter)
	require.NotNil(t, got.PlannedEstimatedHours)
	assert.Equal(t, 4.5, *got.PlannedEstimatedHours)
	assert.Equal(t, int64(7), got.OwnerID)
}

func TestFullPatchClearsMissingFieldsAndKeepsOwner(t *testing.T) {
	task := Task{ID: 1, Title: "t", Status: TaskStatusInProgress, OwnerID: 7}
	p := FullPatch(task)

	assert.True(t, p.Reporter.IsNull())
	assert.True(t, p.PlannedEndDate.IsNull())
	assert.True(t, p.Labels.IsNull())
	assert.False(t, p.OwnerID.IsSet())

	due := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	prior := Task{ID: 1, PlannedEndDate: &due, Labels: []string{"x"}, OwnerID: 7}
	got := p.Apply(prior)
	assert.Nil(t, got.PlannedEndDate)
	assert.Nil(t, got.Labels)
	assert.Equal(t, TaskStatusInProgress, got.Status)
}

func TestCloneDoesNotAlias(t *testing.T) {
	reporter := "Dao"
	task := Task{Reporter: &reporter, Labels: []string{"a"}}
	c := task.Clone()

	*c.Reporter = "Other"
	c.Labels[0] = "b"
	assert.Equal(t, "Dao", *task.Reporter)
	assert.Equal(t, "a", task.Labels[0])
}

func TestWithDefaults(t *testing.T) {
	n := NewTask{Title: "t"}.WithDefaults()
	assert.Equal(t, TaskStatusTodo, n.Status)
	assert.Equal(t, PriorityMedium, n.Priority)
	assert.Equal(t, TaskTypeTask, n.Type)
	assert.Equal(t, 1, n.Points)

	n = NewTask{Status: TaskStatusDone, Points: 5}.WithDefaults()
	assert.Equal(t, TaskStatusDone, n.Status)
	assert.Equal(t, 5, n.Points)
}
