package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/todolist/todo-api/internal/core/domain"
	"github.com/todolist/todo-api/internal/core/ports"
)

type activityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

// NewActivityService returns an ActivityService that writes to repo.
func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) ports.ActivityService {
	return &activityService{repo: repo, log: log}
}

// Process persists a single activity to the audit trail.
func (s *activityService) Process(ctx context.Context, a domain.TodoActivity) error {
	if a.TodoID.IsZero() {
		return fmt.Errorf("process activity: missing todo id")
	}
	if a.Kind != domain.ActivityCreated && a.Kind != domain.ActivityDeleted {
		return fmt.Errorf("process activity: unknown kind %q", a.Kind)
	}

	if err := s.repo.Insert(ctx, &a); err != nil {
		return fmt.Errorf("process activity: insert: %w", err)
	}

	s.log.Debug().
		Str("todo_id", a.TodoID.Hex()).
		Str("kind", string(a.Kind)).
		Str("request_id", a.RequestID).
		Msg("activity recorded")
	return nil
}
