package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/flowboard/core/internal/adapters/rowmap"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

var errOffline = errors.New("connection refused")

// memTable is an in-memory ports.TableStore with failure switches.
type memTable struct {
	mu      sync.Mutex
	rows    []ports.Row
	nextID  int64
	patches []ports.Row
	deletes []int64

	failSelect  error
	failInsert  error
	failUpdate  error
	failDelete  error
	emptyInsert bool
}

func newMemTable(tasks ...entities.Task) *memTable {
	m := &memTable{}
	for _, t := range tasks {
		owner := t.OwnerID
		row := rowmap.InsertPayload(entities.NewTask{
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			Type:        t.Type,
			Points:      t.Points,
			Assignee:    t.Assignee,
			OwnerID:     &owner,
		})
		row[rowmap.ColID] = t.ID
		m.rows = append(m.rows, row)
		if t.ID > m.nextID {
			m.nextID = t.ID
		}
	}
	return m
}

func copyRow(r ports.Row) ports.Row {
	out := make(ports.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (m *memTable) SelectAll(ctx context.Context, table string, order ports.Order) ([]ports.Row, error) {
	return m.SelectEq(ctx, table, "", nil, order)
}

func (m *memTable) SelectEq(_ context.Context, _ string, column string, value any, _ ports.Order) ([]ports.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSelect != nil {
		return nil, &entities.StoreError{Op: "select", Err: m.failSelect}
	}

	out := []ports.Row{}
	for _, r := range m.rows {
		if column != "" && r[column] != value {
			continue
		}
		out = append(out, copyRow(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i][rowmap.ColID].(int64) < out[j][rowmap.ColID].(int64) })
	return out, nil
}

func (m *memTable) Insert(_ context.Context, _ string, row ports.Row) (ports.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert != nil {
		return nil, &entities.StoreError{Op: "insert", Err: m.failInsert}
	}
	if m.emptyInsert {
		return nil, nil
	}

	m.nextID++
	stored := copyRow(row)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)
	stored[rowmap.ColID] = m.nextID
	stored[rowmap.ColCreatedAt] = now
	stored[rowmap.ColUpdatedAt] = now
	m.rows = append(m.rows, stored)
	return copyRow(stored), nil
}

func (m *memTable) UpdateByID(_ context.Context, _ string, id int64, patch ports.Row) (ports.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patches = append(m.patches, copyRow(patch))
	if m.failUpdate != nil {
		return nil, &entities.StoreError{Op: "update", Err: m.failUpdate}
	}

	for _, r := range m.rows {
		if r[rowmap.ColID] == id {
			for k, v := range patch {
				r[k] = v
			}
			return copyRow(r), nil
		}
	}
	return nil, nil
}

func (m *memTable) DeleteByID(_ context.Context, _ string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	if m.failDelete != nil {
		return &entities.StoreError{Op: "delete", Err: m.failDelete}
	}

	for i, r := range m.rows {
		if r[rowmap.ColID] == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memTable) lastPatch() ports.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.patches) == 0 {
		return nil
	}
	return m.patches[len(m.patches)-1]
}

func (m *memTable) setFailUpdate(err error) {
	m.mu.Lock()
	m.failUpdate = err
	m.mu.Unlock()
}

func newTestBoardService(table *memTable) (*BoardService, *TaskStore) {
	store := NewTaskStore(table, "tasks", logger.NewNop())
	return NewBoardService(store, NewBoardMetrics(nil), logger.NewNop()), store
}

// fakeProvider is a scripted ports.IdentityProvider.
type fakeProvider struct {
	users   map[string]ports.IdentityUser
	tokens  map[string]string
	signUps []map[string]any
	fail    error
	gets    int
	signOut []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{users: map[string]ports.IdentityUser{}, tokens: map[string]string{}}
}

func (f *fakeProvider) SignUp(_ context.Context, email, _ string, profile map[string]any) (*ports.Identity, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.signUps = append(f.signUps, profile)
	u := ports.IdentityUser{ID: "6f1c2a7e-0000-4000-8000-000000000001", Email: email, Metadata: profile}
	f.users[email] = u
	f.tokens["tok-"+email] = email
	return &ports.Identity{User: u, AccessToken: "tok-" + email}, nil
}

func (f *fakeProvider) SignIn(_ context.Context, email, _ string) (*ports.Identity, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	u, ok := f.users[email]
	if !ok {
		return nil, errors.New("Invalid login credentials")
	}
	f.tokens["tok-"+email] = email
	return &ports.Identity{User: u, AccessToken: "tok-" + email}, nil
}

func (f *fakeProvider) SignOut(_ context.Context, token string) error {
	f.signOut = append(f.signOut, token)
	delete(f.tokens, token)
	return f.fail
}

func (f *fakeProvider) GetUser(_ context.Context, token string) (*ports.IdentityUser, error) {
	f.gets++
	if f.fail != nil {
		return nil, f.fail
	}
	email, ok := f.tokens[token]
	if !ok {
		return nil, errors.New("invalid JWT")
	}
	u := f.users[email]
	return &u, nil
}
