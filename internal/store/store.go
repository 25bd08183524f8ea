package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/todo-service/internal/model"
)

// ErrNotFound is returned when a row does not exist or, for todos, is not
// owned by the requesting user. The two cases are indistinguishable.
var ErrNotFound = errors.New("record not found")

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts u. Unique violations surface as
	// apperr.ErrDuplicateUsername or apperr.ErrDuplicateEmail.
	CreateUser(ctx context.Context, u model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// MutateUser applies fn to the current row of user id inside one
	// transaction and persists it when fn reports a change. Unique
	// violations surface as in CreateUser.
	MutateUser(ctx context.Context, id string, fn func(*model.User) (bool, error)) (*model.User, error)
}

// TodoStore persists todos. Every call is scoped to ownerID.
type TodoStore interface {
	CreateTodo(ctx context.Context, ownerID string, in model.NewTodo) (*model.Todo, error)
	GetTodo(ctx context.Context, id, ownerID string) (*model.Todo, error)
	// ListTodos returns the requested page and the size of the whole
	// filtered set.
	ListTodos(ctx context.Context, ownerID string, filter model.TodoFilter) ([]model.Todo, int, error)
	UpdateTodo(ctx context.Context, id, ownerID string, patch model.TodoPatch) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id, ownerID string) (bool, error)
	MarkTodoCompleted(ctx context.Context, id, ownerID string) (*model.Todo, error)
	MarkTodoPending(ctx context.Context, id, ownerID string) (*model.Todo, error)
	OverdueTodos(ctx context.Context, ownerID string, now time.Time) ([]model.Todo, error)
	DueSoonTodos(ctx context.Context, ownerID string, from, until time.Time) ([]model.Todo, error)
	TodoStats(ctx context.Context, ownerID string, now time.Time) (model.TodoStats, error)
}

// Store is the full persistence interface of the service.
type Store interface {
	UserStore
	TodoStore
	Close() error
}
