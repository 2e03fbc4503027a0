package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devwillmarinho/TaskFlow-Project/internal/domain"
	"github.com/Devwillmarinho/TaskFlow-Project/internal/repository"
	"github.com/Devwillmarinho/TaskFlow-Project/pkg/config"
	"github.com/Devwillmarinho/TaskFlow-Project/pkg/logger"
)

type stubUserRepository struct {
	byEmail map[string]*domain.User
	byID    map[primitive.ObjectID]*domain.User
	creates int
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[primitive.ObjectID]*domain.User),
	}
}

func (s *stubUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return repository.ErrConflict
	}
	s.creates++
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return nil
}

func (s *stubUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func testConfig() config.APIConfig {
	return config.APIConfig{JWTSecret: "test-secret", SessionTTL: time.Hour}
}

func TestRegisterDuplicateEmailReturnsConflict(t *testing.T) {
	repo := newStubUserRepository()
	svc := New(repo, logger.Discard(), testConfig())

	if _, err := svc.Register(context.Background(), "A", "a@x.com", "secret1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "B", "a@x.com", "secret2"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected a single stored user, got %d", repo.creates)
	}
}

func TestRegisterRequiresAllFields(t *testing.T) {
	svc := New(newStubUserRepository(), logger.Discard(), testConfig())

	cases := []struct {
		name, displayName, email, password string
	}{
		{"missing name", "", "a@x.com", "secret1"},
		{"missing email", "A", "", "secret1"},
		{"missing password", "A", "a@x.com", ""},
		{"blank name", "   ", "a@x.com", "secret1"},
	}
	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.displayName, tc.email, tc.password); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	repo := newStubUserRepository()
	svc := New(repo, logger.Discard(), testConfig())

	user, err := svc.Register(context.Background(), "A", "  A@X.Com ", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if len(user.PasswordHash) == 0 {
		t.Fatal("expected password hash to be set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepository()
	svc := New(repo, logger.Discard(), testConfig())

	if _, err := svc.Register(context.Background(), "A", "a@x.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "a@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := New(newStubUserRepository(), logger.Discard(), testConfig())
	if _, _, err := svc.Login(context.Background(), "nobody@x.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginTokenResolvesToOwner(t *testing.T) {
	repo := newStubUserRepository()
	svc := New(repo, logger.Discard(), testConfig())

	registered, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	user, tok, err := svc.Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("login returned wrong user: %s vs %s", user.ID.Hex(), registered.ID.Hex())
	}
	resolved, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if resolved != registered.ID {
		t.Fatalf("token resolved to %s, want %s", resolved.Hex(), registered.ID.Hex())
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	repo := newStubUserRepository()
	cfg := testConfig()
	cfg.SessionTTL = -time.Minute
	svc := New(repo, logger.Discard(), cfg)

	if _, err := svc.Register(context.Background(), "A", "a@x.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, tok, err := svc.Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Verify(tok); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := New(newStubUserRepository(), logger.Discard(), testConfig())
	if _, err := svc.Verify("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
	if _, err := svc.Verify(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}
