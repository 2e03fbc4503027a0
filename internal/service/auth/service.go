package auth

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
	"github.com/Devwillmarinho/TaskFlow-Project/pkg/config"
	"github.com/Devwillmarinho/TaskFlow-Project/pkg/crypto"
	"github.com/Devwillmarinho/TaskFlow-Project/pkg/token"
)

var (
	// ErrValidation wraps all bad-input errors from this service.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login failures never reveal which part was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	errNameRequired     = fmt.Errorf("%w: name is required", ErrValidation)
	errEmailRequired    = fmt.Errorf("%w: email is required", ErrValidation)
	errPasswordRequired = fmt.Errorf("%w: password is required", ErrValidation)
)

// Service handles registration, login and session token verification.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// Register creates a new account. Returns repository.ErrConflict when the
// email is already registered.
func (s Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, errNameRequired
	}
	if email == "" {
		return nil, errEmailRequired
	}
	if password == "" {
		return nil, errPasswordRequired
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID.Hex())
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", errEmailRequired
	}
	if password == "" {
		return nil, "", errPasswordRequired
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	tok, err := token.Generate(user.ID.Hex(), s.cfg.JWTSecret, s.cfg.SessionTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID.Hex())
	return user, tok, nil
}

// Verify resolves a session token to the owning user id. Any failure, from a
// malformed token to an elapsed expiry, yields an error: callers must treat
// it as unauthenticated and never proceed with a zero id.
func (s Service) Verify(tok string) (primitive.ObjectID, error) {
	claims, err := token.Parse(strings.TrimSpace(tok), s.cfg.JWTSecret)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

// User loads an account by id. Returns repository.ErrNotFound when the
// account no longer exists.
func (s Service) User(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// SessionTTL reports how long issued tokens remain valid.
func (s Service) SessionTTL() time.Duration {
	return s.cfg.SessionTTL
}
