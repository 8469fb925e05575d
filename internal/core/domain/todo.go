package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrEmptyTask = errors.New("task is required and cannot be empty")
var ErrInvalidTodoID = errors.New("invalid todo id")
var ErrTodoNotFound = errors.New("todo not found")

// Todo is a single task record with its completion status.
type Todo struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Task      string             `json:"task" bson:"task"`
	Completed bool               `json:"completed" bson:"completed"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// TrimTask strips leading and trailing whitespace, including the BOM.
func TrimTask(task string) string {
	return strings.TrimFunc(task, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// NewTodo builds an incomplete todo with a trimmed task, stamped at now.
// Timestamps are cut to milliseconds, the precision MongoDB stores.
func NewTodo(task string, now time.Time) (*Todo, error) {
	task = TrimTask(task)
	if task == "" {
		return nil, ErrEmptyTask
	}
	now = now.UTC().Truncate(time.Millisecond)
	return &Todo{
		Task:      task,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ParseTodoID converts a 24-character hex string into an ObjectID.
func ParseTodoID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidTodoID
	}
	return oid, nil
}
