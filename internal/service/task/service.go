package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devwillmarinho/TaskFlow-Project/internal/domain"
	"github.com/Devwillmarinho/TaskFlow-Project/internal/repository"
)

var (
	// ErrValidation wraps all bad-input errors from this service.
	ErrValidation = errors.New("invalid input")

	errTitleRequired   = fmt.Errorf("%w: title is required", ErrValidation)
	errInvalidStatus   = fmt.Errorf("%w: status must be pending, in-progress or completed", ErrValidation)
	errInvalidPriority = fmt.Errorf("%w: priority must be low, medium or high", ErrValidation)
)

// CreateInput encapsulates task creation attributes.
type CreateInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
}

// Service implements owner-scoped task CRUD. Every operation takes the
// resolved caller id; tasks belonging to anyone else behave as if they do
// not exist.
type Service struct {
	tasks  repository.TaskRepository
	logger *slog.Logger
}

// New returns a task service.
func New(tasks repository.TaskRepository, logger *slog.Logger) Service {
	return Service{tasks: tasks, logger: logger}
}

// List returns the caller's tasks newest-first, optionally narrowed by a
// substring search over title and description.
func (s Service) List(ctx context.Context, ownerID primitive.ObjectID, search string) ([]domain.Task, error) {
	return s.tasks.ListTasksByOwner(ctx, ownerID, strings.TrimSpace(search))
}

// Create validates input and stores a new task owned by the caller. Status
// always starts at pending; an omitted or unknown priority becomes medium.
func (s Service) Create(ctx context.Context, ownerID primitive.ObjectID, input CreateInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errTitleRequired
	}
	priority := input.Priority
	if !priority.Valid() {
		priority = domain.PriorityMedium
	}
	now := time.Now().UTC()
	task := &domain.Task{
		ID:          primitive.NewObjectID(),
		UserID:      ownerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.StatusPending,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("task created", "task_id", task.ID.Hex(), "user_id", ownerID.Hex())
	return task, nil
}

// Update merges the patch into the caller's task. A malformed id, an absent
// task and a task owned by someone else all report repository.ErrNotFound.
func (s Service) Update(ctx context.Context, ownerID primitive.ObjectID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(taskID))
	if err != nil {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, errTitleRequired
		}
		patch.Title = &trimmed
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, errInvalidStatus
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, errInvalidPriority
	}
	updated, err := s.tasks.UpdateTask(ctx, id, ownerID, patch, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("task updated", "task_id", updated.ID.Hex(), "user_id", ownerID.Hex())
	return updated, nil
}

// Delete removes the caller's task. Same not-found conflation as Update.
func (s Service) Delete(ctx context.Context, ownerID primitive.ObjectID, taskID string) error {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(taskID))
	if err != nil {
		return repository.ErrNotFound
	}
	if err := s.tasks.DeleteTask(ctx, id, ownerID); err != nil {
		return err
	}
	s.logger.Info("task deleted", "task_id", id.Hex(), "user_id", ownerID.Hex())
	return nil
}
