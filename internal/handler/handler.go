package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dan9191/todo-service/internal/auth"
	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// Service is the business layer used by the handlers
type Service interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	CreateTodo(ctx context.Context, owner auth.Identity, note string) (*models.Todo, error)
	ListTodos(ctx context.Context, owner auth.Identity) ([]models.Todo, error)
	UpdateTodoStatus(ctx context.Context, owner auth.Identity, id int64, status string) (*models.Todo, error)
	DeleteTodo(ctx context.Context, owner auth.Identity, id int64) error
}

// CookieOptions controls the session cookie attributes
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

type Handler struct {
	svc    Service
	cookie CookieOptions
	log    *logrus.Logger
}

func NewHandler(svc Service, cookie CookieOptions, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, cookie: cookie, log: log}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createTodoRequest struct {
	Note string `json:"note"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Data:    auth.Identity{ID: user.ID, Username: user.Username},
	})
}

// Login handles user authentication and sets the session cookie
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(h.cookie.TTL.Seconds())))
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Login successful"})
}

// Logout expires the session cookie. It succeeds with or without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Logout successful"})
}

// Me returns the identity of the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: id})
}

// CreateTodo handles todo creation
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req createTodoRequest
	if !h.decode(w, r, &req) {
		return
	}

	todo, err := h.svc.CreateTodo(r.Context(), id, req.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: todo})
}

// ListTodos returns the caller's todos
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	todos, err := h.svc.ListTodos(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: todos})
}

// UpdateTodoStatus changes the status of one of the caller's todos
func (h *Handler) UpdateTodoStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	todoID, ok := h.todoID(w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	todo, err := h.svc.UpdateTodoStatus(r.Context(), id, todoID, req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: todo})
}

// DeleteTodo removes one of the caller's todos
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	todoID, ok := h.todoID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteTodo(r.Context(), id, todoID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Todo deleted"})
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// identity is only reachable without an identity if a protected route
// was mounted outside the auth middleware
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "Unauthorized"})
		return auth.Identity{}, false
	}
	return id, true
}

func (h *Handler) todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Invalid todo id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return false
	}
	return true
}

// writeError maps service errors to status codes; causes of internal
// failures are logged by the service and never reach the client
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, envelope{Message: vErr.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "Invalid username or password"})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Message: "Todo not found"})
	case errors.Is(err, service.ErrRegistrationFailed):
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "Registration failed"})
	default:
		if !errors.Is(err, service.ErrInternal) {
			h.log.Errorf("Unmapped service error: %v", err)
		}
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
