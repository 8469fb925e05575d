package ports

import (
	"context"

	"github.com/todolist/todo-api/internal/core/domain"
)

// ActivityRepository persists todo activity to the audit collection.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.TodoActivity) error
}

// ActivityRecorder accepts activity for asynchronous persistence.
// Record must not block the caller.
type ActivityRecorder interface {
	Record(activity domain.TodoActivity)
}

// ActivityService processes a single recorded activity.
type ActivityService interface {
	Process(ctx context.Context, activity domain.TodoActivity) error
}
