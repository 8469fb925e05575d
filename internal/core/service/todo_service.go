package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todolist/todo-api/internal/core/domain"
	"github.com/todolist/todo-api/internal/core/ports"
)

type TodoService struct {
	repo     ports.TodoRepository
	idem     ports.IdempotencyStore
	activity ports.ActivityRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewTodoService wires the todo use cases. idem and activity may be nil.
func NewTodoService(repo ports.TodoRepository, idem ports.IdempotencyStore, activity ports.ActivityRecorder, logger zerolog.Logger) *TodoService {
	return &TodoService{
		repo:     repo,
		idem:     idem,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// ListTodos returns all todos, newest first.
func (s *TodoService) ListTodos(ctx context.Context) ([]*domain.Todo, error) {
	todos, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*domain.Todo{}
	}
	return todos, nil
}

// CreateTodo persists a new todo. If an idempotency key is provided and was
// already used, the todo created by the first request is returned instead.
func (s *TodoService) CreateTodo(ctx context.Context, input ports.CreateTodoInput) (*ports.CreateTodoResult, error) {
	todo, err := domain.NewTodo(input.Task, s.now())
	if err != nil {
		return nil, err
	}

	if existing := s.replay(ctx, input.IdempotencyKey); existing != nil {
		return &ports.CreateTodoResult{Todo: existing, Replayed: true}, nil
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		s.logger.Error().Err(err).Msg("failed to create todo")
		return nil, err
	}

	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, input.IdempotencyKey, todo.ID.Hex()); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	s.record(domain.TodoActivity{
		TodoID:     todo.ID,
		Kind:       domain.ActivityCreated,
		Task:       todo.Task,
		RequestID:  input.RequestID,
		OccurredAt: todo.CreatedAt,
	})

	s.logger.Info().Str("todo_id", todo.ID.Hex()).Msg("todo created")
	return &ports.CreateTodoResult{Todo: todo}, nil
}

// DeleteTodo removes a todo by id. Deleting an unknown id is not an error.
func (s *TodoService) DeleteTodo(ctx context.Context, id, requestID string) error {
	oid, err := domain.ParseTodoID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, oid)
	if err != nil {
		s.logger.Error().Err(err).Str("todo_id", id).Msg("failed to delete todo")
		return err
	}
	if !deleted {
		s.logger.Debug().Str("todo_id", id).Msg("delete matched no todo")
		return nil
	}

	s.record(domain.TodoActivity{
		TodoID:     oid,
		Kind:       domain.ActivityDeleted,
		RequestID:  requestID,
		OccurredAt: s.now().UTC(),
	})
	s.logger.Info().Str("todo_id", id).Msg("todo deleted")
	return nil
}

// replay returns the todo previously created under key, or nil. Store or
// lookup failures fall through to a normal create.
func (s *TodoService) replay(ctx context.Context, key string) *domain.Todo {
	if key == "" || s.idem == nil {
		return nil
	}

	id, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if id == "" {
		return nil
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	existing, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if !errors.Is(err, domain.ErrTodoNotFound) {
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotent replay lookup failed")
		}
		return nil
	}

	s.logger.Info().Str("idempotency_key", key).Str("todo_id", id).Msg("idempotent replay")
	return existing
}

func (s *TodoService) record(a domain.TodoActivity) {
	if s.activity == nil {
		return
	}
	s.activity.Record(a)
}
