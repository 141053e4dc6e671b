package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/core/internal/adapters/repository"
	"github.com/flowboard/core/internal/adapters/rowmap"
	"github.com/flowboard/core/internal/adapters/sessioncache"
	"github.com/flowboard/core/internal/application/services"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/config"
	"github.com/flowboard/core/internal/infrastructure/database"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

const orgDomain = "botnoigroup.com"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		App:      config.AppConfig{Version: "test", Environment: "test", OrgDomain: orgDomain},
		Store:    config.StoreConfig{Driver: "sqlite", Table: "tasks"},
		Session:  config.SessionConfig{Cache: "memory", TTL: time.Minute, CookieName: "authToken", CookieTTL: 7 * 24 * time.Hour},
		JWT:      config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour, Issuer: "flowboard-test"},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*"},
		Metrics:  config.MetricsConfig{Enabled: true},
	}

	db, err := database.New("sqlite", config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.NewNop()
	reg := prometheus.NewRegistry()

	table := repository.NewSQLTableStore(db.DB, "sqlite", map[string][]string{"tasks": rowmap.Columns}, log)
	identity := services.NewLocalIdentity(repository.NewUserRepository(db.DB), cfg.JWT, orgDomain, log)
	auth := services.NewAuthService(identity, sessioncache.NewMemory(), cfg.Session.TTL, orgDomain, log)
	boards := services.NewBoardService(services.NewTaskStore(table, "tasks", log), services.NewBoardMetrics(reg), log)

	srv, err := New(cfg, Dependencies{
		Auth:     auth,
		Boards:   boards,
		Registry: services.NewBoardRegistry(boards, time.Hour, 100),
		Metrics:  reg,
		Checks: map[string]HealthCheck{
			"database": db.HealthCheck,
		},
	}, log)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "authToken", Value: token})
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, srv *Server, email, name string) ports.AuthResponse {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/auth/register", ports.RegisterRequest{
		Email: email, Name: name, Password: "secret1", ConfirmPassword: "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp ports.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestSessionBoundary(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/?priority=high", nil, "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?from=%2F%3Fpriority%3Dhigh", rec.Header().Get("Location"))

	rec = do(t, srv, http.MethodGet, "/api/board", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", decode[ports.MessageResponse](t, rec).Message)

	for _, path := range []string{"/login", "/register", "/health", "/ready"} {
		rec = do(t, srv, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	// a token that does not resolve sends the browser back to login
	rec = do(t, srv, http.MethodGet, "/", nil, "garbage")
	assert.Equal(t, http.StatusFound, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterSetsCookie(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/auth/register", ports.RegisterRequest{
		Email: "dao@botnoigroup.com", Name: "Dao", Password: "secret1", ConfirmPassword: "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "authToken", cookies[0].Name)
	assert.Equal(t, 7*24*60*60, cookies[0].MaxAge)
	assert.Equal(t, "/", cookies[0].Path)

	resp := decode[ports.AuthResponse](t, rec)
	assert.Equal(t, entities.RoleMember, resp.User.Role)
	assert.Equal(t, cookies[0].Value, resp.Token)

	rec = do(t, srv, http.MethodPost, "/api/auth/register", ports.RegisterRequest{
		Email: "dao@botnoigroup.com", Name: "Dao", Password: "secret1", ConfirmPassword: "secret1",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/register", ports.RegisterRequest{
		Email: "new@botnoigroup.com", Name: "New", Password: "12345", ConfirmPassword: "12345",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/login", ports.LoginRequest{Email: "dao@botnoigroup.com", Password: "wrong1"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBoardFlow(t *testing.T) {
	srv := newTestServer(t)
	member := register(t, srv, "dao@botnoigroup.com", "Dao")
	guest := register(t, srv, "visitor@gmail.com", "Visitor")

	rec := do(t, srv, http.MethodPost, "/api/tasks", map[string]any{
		"title":          "Draft release notes",
		"description":    "first draft",
		"assignee":       "Dao",
		"priority":       "high",
		"plannedEndDate": "2026-11-01",
	}, member.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[entities.Task](t, rec)
	assert.Equal(t, member.User.ID, created.OwnerID)
	assert.Equal(t, entities.TaskStatusTodo, created.Status)
	require.NotNil(t, created.PlannedEndDate)

	rec = do(t, srv, http.MethodPost, "/api/tasks", map[string]any{
		"title": "x", "description": "y", "assignee": "z",
	}, guest.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/board?priority=high", nil, guest.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[ports.BoardView](t, rec)
	assert.False(t, view.CanCreate)
	assert.Equal(t, "TO DO", view.Lanes[0].Title)
	require.Equal(t, 1, view.Lanes[0].Count)
	assert.Equal(t, entities.AccessViewer, view.Lanes[0].Tasks[0].Access)

	rec = do(t, srv, http.MethodGet, "/api/board?priority=urgent", nil, guest.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	statusPath := "/api/tasks/" + itoa(created.ID) + "/status"
	rec = do(t, srv, http.MethodPatch, statusPath, ports.StatusChangeRequest{Status: entities.TaskStatusDone}, guest.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodPatch, statusPath, ports.StatusChangeRequest{Status: entities.TaskStatusDone}, member.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[ports.MutationResponse](t, rec)
	assert.Equal(t, entities.TaskStatusDone, moved.Task.Status)
	assert.Empty(t, moved.Warning)

	rec = do(t, srv, http.MethodPatch, statusPath, map[string]string{"status": "blocked"}, member.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, "/api/tasks/"+itoa(created.ID), map[string]any{
		"title": "Draft the release notes", "description": "second draft", "status": "done",
		"priority": "medium", "type": "story", "points": 5, "assignee": "Dao",
	}, member.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decode[ports.MutationResponse](t, rec)
	assert.Equal(t, "Draft the release notes", edited.Task.Title)
	assert.Equal(t, member.User.ID, edited.Task.OwnerID)
	assert.Nil(t, edited.Task.PlannedEndDate)

	rec = do(t, srv, http.MethodGet, "/api/tasks/"+itoa(created.ID), nil, member.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.AccessEditor, decode[ports.TaskView](t, rec).Access)

	rec = do(t, srv, http.MethodDelete, "/api/tasks/"+itoa(created.ID), nil, guest.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/tasks/"+itoa(created.ID), nil, member.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/tasks/"+itoa(created.ID), nil, member.Token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/tasks/abc", nil, member.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/", nil, member.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dao (member)")

	rec = do(t, srv, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flowboard_mutations_total{kind="create",outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	member := register(t, srv, "dao@botnoigroup.com", "Dao")

	rec := do(t, srv, http.MethodGet, "/api/auth/me", nil, member.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dao", decode[entities.User](t, rec).Name)

	rec = do(t, srv, http.MethodPost, "/api/auth/logout", nil, member.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)

	rec = do(t, srv, http.MethodGet, "/api/auth/me", nil, member.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIsPublic(t *testing.T) {
	for _, p := range []string{"/login", "/register", "/health", "/health/detailed", "/ready", "/metrics", "/swagger/index.html", "/favicon.ico", "/static/app.css", "/api/auth/login"} {
		assert.True(t, isPublic(p), p)
	}
	for _, p := range []string{"/", "/api/board", "/api/tasks/1", "/api/auth/me", "/board"} {
		assert.False(t, isPublic(p), p)
	}
}

func TestHealthReportsFailingCheck(t *testing.T) {
	srv := newTestServer(t)
	srv.deps.Checks["redis"] = func(context.Context) error { return assert.AnError }

	rec := do(t, srv, http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "redis_not_ready"))

	rec = do(t, srv, http.MethodGet, "/health/detailed", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestCreateValidatesOptionalFields(t *testing.T) {
	srv := newTestServer(t)
	member := register(t, srv, "dao@botnoigroup.com", "Dao")

	rec := do(t, srv, http.MethodPost, "/api/tasks", map[string]any{
		"title": "Estimate", "description": "d", "assignee": "Dao",
		"plannedEstimatedHours": -5,
	}, member.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/tasks", map[string]any{
		"title": "Estimate", "description": "d", "assignee": "Dao",
		"impact": "severe",
	}, member.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/board?reload=true", nil, member.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[ports.BoardView](t, rec).Lanes[0].Count)

	rec = do(t, srv, http.MethodPost, "/api/tasks", map[string]any{
		"title": "Estimate", "description": "d", "assignee": "Dao",
		"actualEstimatedHours": 0,
		"impact":               nil,
		"reporter":             nil,
		"labels":               nil,
	}, member.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[entities.Task](t, rec)
	assert.Nil(t, created.Impact)
	assert.Nil(t, created.Reporter)
	require.NotNil(t, created.ActualEstimatedHours)
	assert.Zero(t, *created.ActualEstimatedHours)
}

func TestRejectedTokenDropsBoard(t *testing.T) {
	srv := newTestServer(t)
	srv.deps.Registry.Acquire(context.Background(), "stale-token")
	require.Equal(t, 1, srv.deps.Registry.Len())

	rec := do(t, srv, http.MethodGet, "/api/board", nil, "stale-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, srv.deps.Registry.Len())
}
