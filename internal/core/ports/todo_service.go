package ports

import (
	"context"

	"github.com/todolist/todo-api/internal/core/domain"
)

// CreateTodoInput carries the data needed to create a todo.
type CreateTodoInput struct {
	Task           string
	IdempotencyKey string // optional
	RequestID      string
}

// CreateTodoResult is returned by CreateTodo.
type CreateTodoResult struct {
	Todo *domain.Todo
	// Replayed is true when the Idempotency-Key matched an earlier create.
	Replayed bool
}

// TodoService defines use-case operations for todos.
type TodoService interface {
	ListTodos(ctx context.Context) ([]*domain.Todo, error)
	CreateTodo(ctx context.Context, input CreateTodoInput) (*CreateTodoResult, error)
	DeleteTodo(ctx context.Context, id, requestID string) error
}
