// Package repositorytest provides an in-memory store with the same
// semantics as the PostgreSQL repository, for use in tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
)

// MemoryStore keeps users and todos in maps guarded by a mutex
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	todos    map[int64]models.Todo
	nextUser int64
	nextTodo int64

	// Err, when set, is returned by every operation
	Err error
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.User),
		todos: make(map[int64]models.Todo),
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[user.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	m.nextUser++
	user.ID = m.nextUser
	user.CreatedAt = time.Now()
	m.users[user.Username] = *user
	return nil
}

func (m *MemoryStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) CreateTodo(_ context.Context, todo *models.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.nextTodo++
	todo.ID = m.nextTodo
	todo.CreatedAt = time.Now()
	m.todos[todo.ID] = *todo
	return nil
}

func (m *MemoryStore) ListTodos(_ context.Context, userID int64) ([]models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.Todo, 0)
	for _, t := range m.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateTodoStatus(_ context.Context, id, userID int64, status string) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.todos[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	t.Status = status
	m.todos[id] = t
	return &t, nil
}

func (m *MemoryStore) DeleteTodo(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	t, ok := m.todos[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.todos, id)
	return nil
}

// Ping reports Err, mirroring a database health check
func (m *MemoryStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}
