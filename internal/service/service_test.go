package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/todo-service/internal/auth"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository/repositorytest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errBoom }
func (failingHasher) Verify(string, string) bool  { return false }

type failingIssuer struct{}

func (failingIssuer) Issue(int64, string) (string, error) { return "", errBoom }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T) (*Service, *repositorytest.MemoryStore, *auth.TokenCodec) {
	t.Helper()
	store := repositorytest.NewMemoryStore()
	codec := auth.NewTokenCodec([]byte("k"), time.Hour)
	return NewService(store, auth.NewPasswordHasher(bcrypt.MinCost), codec, quietLogger()), store, codec
}

func TestRegister(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice", u.Username)

	stored, err := store.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", stored.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, tc := range []struct{ user, pass string }{
		{"", "pw"},
		{"   ", "pw"},
		{"alice", ""},
	} {
		_, err := svc.Register(context.Background(), tc.user, tc.pass)
		assert.ErrorIs(t, err, ErrValidation, "user=%q pass=%q", tc.user, tc.pass)
	}
}

func TestRegister_DuplicateIsGeneric(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrRegistrationFailed)
}

func TestRegister_HashAndStoreFailures(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	svc := NewService(store, failingHasher{}, auth.NewTokenCodec([]byte("k"), time.Hour), quietLogger())
	_, err := svc.Register(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, ErrInternal)

	svc2, store2, _ := newTestService(t)
	store2.Err = errBoom
	_, err = svc2.Register(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestLogin(t *testing.T) {
	svc, _, codec := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, "alice", "nope")
	_, noUser := svc.Login(ctx, "ghost", "pw")
	_, empty := svc.Login(ctx, "", "")

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, ErrInvalidCredentials)
	assert.ErrorIs(t, empty, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestLogin_InternalFailures(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	store.Err = errBoom
	_, err = svc.Login(ctx, "alice", "pw")
	assert.ErrorIs(t, err, ErrInternal)

	store.Err = nil
	svc.tokens = failingIssuer{}
	_, err = svc.Login(ctx, "alice", "pw")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestTodoLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := auth.Identity{ID: 1, Username: "alice"}

	todo, err := svc.CreateTodo(ctx, owner, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, todo.Status)
	assert.Equal(t, owner.ID, todo.UserID)

	todos, err := svc.ListTodos(ctx, owner)
	require.NoError(t, err)
	require.Len(t, todos, 1)

	updated, err := svc.UpdateTodoStatus(ctx, owner, todo.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	require.NoError(t, svc.DeleteTodo(ctx, owner, todo.ID))

	todos, err = svc.ListTodos(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestTodo_OwnershipScoping(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	alice := auth.Identity{ID: 1, Username: "alice"}
	bob := auth.Identity{ID: 2, Username: "bob"}

	todo, err := svc.CreateTodo(ctx, alice, "secret")
	require.NoError(t, err)

	bobs, err := svc.ListTodos(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	_, err = svc.UpdateTodoStatus(ctx, bob, todo.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTodo(ctx, bob, todo.ID), ErrNotFound)

	_, missing := svc.UpdateTodoStatus(ctx, alice, 999, models.StatusCompleted)
	assert.ErrorIs(t, missing, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTodo(ctx, alice, 999), ErrNotFound)
}

func TestTodo_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := auth.Identity{ID: 1}

	_, err := svc.CreateTodo(ctx, owner, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateTodoStatus(ctx, owner, 1, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateTodoStatus(ctx, owner, 1, "archived")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "pending")
}

func TestTodo_StoreFailures(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	owner := auth.Identity{ID: 1}
	store.Err = errBoom

	_, err := svc.CreateTodo(ctx, owner, "x")
	assert.ErrorIs(t, err, ErrInternal)
	_, err = svc.ListTodos(ctx, owner)
	assert.ErrorIs(t, err, ErrInternal)
	_, err = svc.UpdateTodoStatus(ctx, owner, 1, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, svc.DeleteTodo(ctx, owner, 1), ErrInternal)
}
