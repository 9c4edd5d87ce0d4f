package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/todo-service/internal/auth"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// Store is the persistence the service depends on
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateTodo(ctx context.Context, todo *models.Todo) error
	ListTodos(ctx context.Context, userID int64) ([]models.Todo, error)
	UpdateTodoStatus(ctx context.Context, id, userID int64, status string) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id, userID int64) error
}

// Hasher hashes and verifies passwords
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints session tokens
type TokenIssuer interface {
	Issue(userID int64, username string) (string, error)
}

// Service handles business logic
type Service struct {
	store  Store
	hasher Hasher
	tokens TokenIssuer
	log    *logrus.Logger
}

// NewService initializes a new service
func NewService(store Store, hasher Hasher, tokens TokenIssuer, log *logrus.Logger) *Service {
	return &Service{store: store, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, validationError("username and password are required")
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Errorf("Failed to hash password: %v", err)
		return nil, ErrInternal
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			s.log.WithField("username", username).Warn("Registration rejected: duplicate username")
			return nil, ErrRegistrationFailed
		}
		s.log.Errorf("Failed to create user: %v", err)
		return nil, ErrInternal
	}

	s.log.WithField("user_id", user.ID).Infof("User registered: %s", user.Username)
	return user, nil
}

// Login authenticates a user and returns a session token
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		s.log.Errorf("Failed to find user: %v", err)
		return "", ErrInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.log.Errorf("Failed to issue token: %v", err)
		return "", ErrInternal
	}

	s.log.WithField("user_id", user.ID).Infof("User logged in: %s", user.Username)
	return token, nil
}

// CreateTodo creates a pending todo for the authenticated user
func (s *Service) CreateTodo(ctx context.Context, owner auth.Identity, note string) (*models.Todo, error) {
	if strings.TrimSpace(note) == "" {
		return nil, validationError("note is required")
	}

	todo := &models.Todo{
		UserID: owner.ID,
		Note:   note,
		Status: models.StatusPending,
	}
	if err := s.store.CreateTodo(ctx, todo); err != nil {
		s.log.Errorf("Failed to create todo for user %d: %v", owner.ID, err)
		return nil, ErrInternal
	}

	s.log.Debugf("Todo %d created for user %d", todo.ID, owner.ID)
	return todo, nil
}

// ListTodos returns the todos owned by the authenticated user
func (s *Service) ListTodos(ctx context.Context, owner auth.Identity) ([]models.Todo, error) {
	todos, err := s.store.ListTodos(ctx, owner.ID)
	if err != nil {
		s.log.Errorf("Failed to list todos for user %d: %v", owner.ID, err)
		return nil, ErrInternal
	}
	return todos, nil
}

// UpdateTodoStatus changes the status of a todo owned by the authenticated user
func (s *Service) UpdateTodoStatus(ctx context.Context, owner auth.Identity, id int64, status string) (*models.Todo, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, validationError("status is required")
	}
	if !models.ValidStatus(status) {
		return nil, validationError(fmt.Sprintf("status must be %q or %q", models.StatusPending, models.StatusCompleted))
	}

	todo, err := s.store.UpdateTodoStatus(ctx, id, owner.ID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Errorf("Failed to update todo %d for user %d: %v", id, owner.ID, err)
		return nil, ErrInternal
	}
	return todo, nil
}

// DeleteTodo removes a todo owned by the authenticated user
func (s *Service) DeleteTodo(ctx context.Context, owner auth.Identity, id int64) error {
	if err := s.store.DeleteTodo(ctx, id, owner.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		s.log.Errorf("Failed to delete todo %d for user %d: %v", id, owner.ID, err)
		return ErrInternal
	}
	s.log.Debugf("Todo %d deleted by user %d", id, owner.ID)
	return nil
}
