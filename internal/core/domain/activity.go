package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityKind names a todo lifecycle event.
type ActivityKind string

const (
	ActivityCreated ActivityKind = "todo.created"
	ActivityDeleted ActivityKind = "todo.deleted"
)

// TodoActivity is an audit record of a change applied to a todo.
type TodoActivity struct {
	TodoID     primitive.ObjectID
	Kind       ActivityKind
	Task       string // empty for deletions
	RequestID  string
	OccurredAt time.Time
}
