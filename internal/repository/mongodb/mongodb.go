package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Devwillmarinho/TaskFlow-Project/internal/domain"
	"github.com/Devwillmarinho/TaskFlow-Project/internal/repository"
)

// Repository implements persistence interfaces on MongoDB.
type Repository struct {
	db    *mongo.Database
	users *mongo.Collection
	tasks *mongo.Collection
}

// New constructs a Repository over the given database.
func New(db *mongo.Database) *Repository {
	return &Repository{
		db:    db,
		users: db.Collection("users"),
		tasks: db.Collection("tasks"),
	}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository = (*Repository)(nil)
	_ repository.TaskRepository = (*Repository)(nil)
)

// Ping verifies database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

// CreateUser inserts a user. A duplicate email maps to ErrConflict.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateTask inserts a task.
func (r *Repository) CreateTask(ctx context.Context, task *domain.Task) error {
	res, err := r.tasks.InsertOne(ctx, task)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		task.ID = id
	}
	return nil
}

// ListTasksByOwner returns the owner's tasks ordered by createdAt descending,
// optionally narrowed by a case-insensitive substring match over title and
// description.
func (r *Repository) ListTasksByOwner(ctx context.Context, ownerID primitive.ObjectID, search string) ([]domain.Task, error) {
	filter := bson.M{"userId": ownerID}
	if search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	tasks := []domain.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask merges the patch into the task matched by both id and owner.
func (r *Repository) UpdateTask(ctx context.Context, taskID, ownerID primitive.ObjectID, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error) {
	set := bson.M{"updatedAt": updatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	filter := bson.M{"_id": taskID, "userId": ownerID}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.Task
	if err := r.tasks.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes the task matched by both id and owner.
func (r *Repository) DeleteTask(ctx context.Context, taskID, ownerID primitive.ObjectID) error {
	res, err := r.tasks.DeleteOne(ctx, bson.M{"_id": taskID, "userId": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the collection indexes. Safe to run on every startup.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := r.users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}

	taskIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
	}
	if _, err := r.tasks.Indexes().CreateMany(ctx, taskIndexes); err != nil {
		return fmt.Errorf("create tasks indexes: %w", err)
	}
	return nil
}
