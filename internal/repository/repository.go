package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devwillmarinho/TaskFlow-Project/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	// CreateUser inserts a user. Returns ErrConflict when the email is taken.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// TaskRepository persists tasks. Every read is filtered by owner and every
// mutation matches both task id and owner, never the id alone.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	// ListTasksByOwner returns the owner's tasks newest-first. A non-empty
	// search narrows by case-insensitive substring over title and description.
	ListTasksByOwner(ctx context.Context, ownerID primitive.ObjectID, search string) ([]domain.Task, error)
	// UpdateTask merges the patch into the owned task and stamps updatedAt,
	// returning the task as stored afterwards. ErrNotFound when no owned task
	// matches.
	UpdateTask(ctx context.Context, taskID, ownerID primitive.ObjectID, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error)
	// DeleteTask removes the owned task. ErrNotFound when no owned task matches.
	DeleteTask(ctx context.Context, taskID, ownerID primitive.ObjectID) error
}
