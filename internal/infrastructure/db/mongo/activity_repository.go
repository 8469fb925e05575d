package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/todolist/todo-api/internal/core/domain"
	"github.com/todolist/todo-api/internal/core/ports"
)

const collectionTodoEvents = "todo_events"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	col *mongo.Collection
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: collection(db, collectionTodoEvents)}
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

// Insert persists an activity to the todo_events audit collection.
func (r *ActivityRepository) Insert(ctx context.Context, a *domain.TodoActivity) error {
	if r.col == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"todoId":     a.TodoID,
		"kind":       string(a.Kind),
		"occurredAt": a.OccurredAt.UTC(),
		"recordedAt": time.Now().UTC(),
	}
	if a.Task != "" {
		doc["task"] = a.Task
	}
	if a.RequestID != "" {
		doc["requestId"] = a.RequestID
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	if r.col == nil {
		return ErrNotConnected
	}
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "todoId", Value: 1}, {Key: "occurredAt", Value: -1}},
	})
	return err
}
