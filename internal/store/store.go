package store

import (
	"context"
	"errors"

	"todolist/api/internal/model"
)

var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	// ErrInvalid marks a record the store refuses to hold, such as a blank username.
	ErrInvalid = errors.New("invalid")
)

// ConflictError names the unique column a write collided with.
// It matches ErrConflict under errors.Is.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "conflict"
	}
	return "conflict: " + e.Field
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

// DefaultListLimit applies when a filter has no positive Limit.
const DefaultListLimit = 100

type UserFilter struct {
	Offset int
	Limit  int
}

// TodoFilter always carries the owner; stores never return another user's todos.
type TodoFilter struct {
	UserID      int64
	Title       string
	Description string
	State       model.TodoState
	Offset      int
	Limit       int
}

type Store interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateTodo(ctx context.Context, t model.Todo) (model.Todo, error)
	ListTodos(ctx context.Context, f TodoFilter) ([]model.Todo, error)
	GetTodo(ctx context.Context, userID, id int64) (*model.Todo, error)
	UpdateTodo(ctx context.Context, t model.Todo) (model.Todo, error)
	DeleteTodo(ctx context.Context, userID, id int64) error
}
