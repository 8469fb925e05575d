package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/todolist/todo-api/internal/core/domain"
)

const collectionTodos = "todos"

type TodoRepository struct {
	col *mongo.Collection
}

func NewTodoRepository(db *mongo.Database) *TodoRepository {
	return &TodoRepository{col: collection(db, collectionTodos)}
}

// Create inserts a new todo document and assigns its id.
func (r *TodoRepository) Create(ctx context.Context, t *domain.Todo) error {
	if r.col == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, t)
	return err
}

// FindByID retrieves a single todo.
func (r *TodoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Todo, error) {
	if r.col == nil {
		return nil, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Todo
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListNewestFirst returns all todos sorted by createdAt descending. Ties are
// broken by _id, which grows with insertion order.
func (r *TodoRepository) ListNewestFirst(ctx context.Context) ([]*domain.Todo, error) {
	if r.col == nil {
		return nil, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	todos := make([]*domain.Todo, 0)
	if err := cur.All(ctx, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Delete removes a todo by id and reports whether anything was removed.
func (r *TodoRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if r.col == nil {
		return false, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes creates the sort index used by ListNewestFirst.
func (r *TodoRepository) EnsureIndexes(ctx context.Context) error {
	if r.col == nil {
		return ErrNotConnected
	}
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	return err
}
