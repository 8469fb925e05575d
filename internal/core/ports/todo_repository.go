package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todolist/todo-api/internal/core/domain"
)

// TodoRepository defines persistence operations for todos.
type TodoRepository interface {
	Create(ctx context.Context, t *domain.Todo) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Todo, error)
	// ListNewestFirst returns every todo ordered by creation time, newest first.
	ListNewestFirst(ctx context.Context) ([]*domain.Todo, error)
	// Delete removes the todo and reports whether a document was removed.
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}
