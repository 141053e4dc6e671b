package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/core/internal/adapters/rowmap"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

type recorded struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	body   map[string]any
}

func newServer(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.Query()
		rec.header = r.Header.Clone()
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &rec.body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "anon-key", 5*time.Second, logger.NewNop()), rec
}

func TestSelectAllSendsOrderAndAnonCredentials(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `[{"id":1,"title":"a","status":"todo","owner_id":1},{"id":2,"title":"b","status":"done","owner_id":2}]`)

	rows, err := client.SelectAll(context.Background(), "tasks", ports.OrderByID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/rest/v1/tasks", rec.path)
	assert.Equal(t, "*", rec.query["select"][0])
	assert.Equal(t, "id.asc", rec.query["order"][0])
	assert.Equal(t, "anon-key", rec.header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", rec.header.Get("Authorization"))
	assert.Empty(t, rec.header.Get("Prefer"))

	task := rowmap.RowToTask(rows[1])
	assert.Equal(t, int64(2), task.ID)
	assert.Equal(t, int64(2), task.OwnerID)
}

func TestSelectEqUsesUserToken(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `[]`)

	ctx := ports.WithAccessToken(context.Background(), "user-token")
	rows, err := client.SelectEq(ctx, "tasks", "status", entities.TaskStatusDone, ports.OrderByID)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	assert.Equal(t, "eq.done", rec.query["status"][0])
	assert.Equal(t, "Bearer user-token", rec.header.Get("Authorization"))
	assert.Equal(t, "anon-key", rec.header.Get("apikey"))
}

func TestInsertAsksForRepresentation(t *testing.T) {
	client, rec := newServer(t, http.StatusCreated, `[{"id":7,"title":"Draft release notes","status":"todo","owner_id":1,"created_at":"2024-05-01T10:00:00+00:00"}]`)

	owner := int64(1)
	row, err := client.Insert(context.Background(), "tasks", rowmap.InsertPayload(entities.NewTask{
		Title:    "Draft release notes",
		Status:   entities.TaskStatusTodo,
		Assignee: "Dao",
		OwnerID:  &owner,
	}))
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "return=representation", rec.header.Get("Prefer"))
	assert.Equal(t, "application/json", rec.header.Get("Content-Type"))
	assert.Equal(t, "Draft release notes", rec.body["title"])
	assert.EqualValues(t, 1, rec.body["owner_id"])
	assert.NotContains(t, rec.body, "reporter")

	task := rowmap.RowToTask(row)
	assert.Equal(t, int64(7), task.ID)
	require.NotNil(t, task.CreatedAt)
}

func TestInsertWithEmptyResponseReturnsNilRow(t *testing.T) {
	client, _ := newServer(t, http.StatusCreated, `[]`)

	row, err := client.Insert(context.Background(), "tasks", ports.Row{"title": "x"})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestUpdateByIDSendsSparsePatch(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `[{"id":3,"status":"inprogress"}]`)

	row, err := client.UpdateByID(context.Background(), "tasks", 3, rowmap.UpdatePayload(entities.StatusPatch(entities.TaskStatusInProgress)))
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.Equal(t, http.MethodPatch, rec.method)
	assert.Equal(t, "eq.3", rec.query["id"][0])
	assert.Equal(t, map[string]any{"status": "inprogress"}, rec.body)
}

func TestUpdateByIDNoMatch(t *testing.T) {
	client, _ := newServer(t, http.StatusOK, `[]`)

	row, err := client.UpdateByID(context.Background(), "tasks", 99, ports.Row{"status": "done"})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestDeleteByID(t *testing.T) {
	client, rec := newServer(t, http.StatusNoContent, ``)

	require.NoError(t, client.DeleteByID(context.Background(), "tasks", 5))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "eq.5", rec.query["id"][0])
}

func TestFailureBecomesStoreError(t *testing.T) {
	client, _ := newServer(t, http.StatusBadRequest, `{"code":"23514","message":"new row violates check constraint"}`)

	_, err := client.UpdateByID(context.Background(), "tasks", 1, ports.Row{"status": "blocked"})
	require.Error(t, err)

	var storeErr *entities.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "update", storeErr.Op)
	assert.Contains(t, err.Error(), "check constraint")
}

func TestTransportFailureBecomesStoreError(t *testing.T) {
	client := New("http://127.0.0.1:1", "anon-key", time.Second, logger.NewNop())

	_, err := client.SelectAll(context.Background(), "tasks", ports.OrderByID)

	var storeErr *entities.StoreError
	assert.True(t, errors.As(err, &storeErr))
}
