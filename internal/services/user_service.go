package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/user-directory/internal/models"
	"github.com/isdelr/user-directory/internal/repository"
	"github.com/rs/zerolog/log"
)

// User change event actions.
const (
	EventUserCreated         = "user.created"
	EventUserUpdated         = "user.updated"
	EventUserPasswordUpdated = "user.password_updated"
	EventUserDeleted         = "user.deleted"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, username, password string) (models.User, error)
	GetUser(ctx context.Context, username string) (models.User, error)
	UpdateUser(ctx context.Context, currentUsername, username, password string) (models.User, error)
	UpdatePassword(ctx context.Context, username, password string) (models.User, error)
	DeleteUser(ctx context.Context, username string) (models.User, error)
}

// EventPublisher receives user change notifications. Publish must not block.
type EventPublisher interface {
	Publish(action string, payload any)
}

// Hasher turns a plaintext password into a stored hash.
type Hasher interface {
	Hash(password string) (string, error)
}

// UserService provides business logic for user management.
type UserService struct {
	repo   repository.UserRepository
	hasher Hasher
	events EventPublisher
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(repo repository.UserRepository, hasher Hasher, events EventPublisher) *UserService {
	return &UserService{repo: repo, hasher: hasher, events: events}
}

// ListUsers returns every stored user, hashes included.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUser stores a new user with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: username,
		Password: hash,
	}
	// A duplicate username is reported like any other store failure here;
	// callers can still match repository.ErrDuplicateKey.
	if err := s.repo.Create(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("failed to create user %q: %w", username, err)
	}

	s.publish(EventUserCreated, map[string]string{"username": user.Username})
	return user, nil
}

// GetUser retrieves a single user by username.
func (s *UserService) GetUser(ctx context.Context, username string) (models.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to fetch user %q: %w", username, err)
	}
	return user, nil
}

// UpdateUser renames a user and/or replaces their password. Empty arguments
// leave the corresponding field unchanged, but at least one must be set.
func (s *UserService) UpdateUser(ctx context.Context, currentUsername, username, password string) (models.User, error) {
	if username == "" && password == "" {
		return models.User{}, fmt.Errorf("%w: at least one of username or password required", ErrInvalidInput)
	}

	var changes models.UserUpdate
	if username != "" {
		changes.Username = &username
	}
	if password != "" {
		hash, err := s.hashPassword(password)
		if err != nil {
			return models.User{}, err
		}
		changes.PasswordHash = &hash
	}

	user, err := s.repo.Update(ctx, currentUsername, changes)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return models.User{}, ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return models.User{}, ErrUsernameExists
	case err != nil:
		return models.User{}, fmt.Errorf("failed to update user %q: %w", currentUsername, err)
	}

	s.publish(EventUserUpdated, map[string]string{
		"username":         user.Username,
		"previousUsername": currentUsername,
	})
	return user, nil
}

// UpdatePassword replaces a user's password.
func (s *UserService) UpdatePassword(ctx context.Context, username, password string) (models.User, error) {
	if password == "" {
		return models.User{}, fmt.Errorf("%w: password required", ErrInvalidInput)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.repo.Update(ctx, username, models.UserUpdate{PasswordHash: &hash})
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update password for %q: %w", username, err)
	}

	s.publish(EventUserPasswordUpdated, map[string]string{"username": user.Username})
	return user, nil
}

// DeleteUser removes a user and returns the deleted record.
func (s *UserService) DeleteUser(ctx context.Context, username string) (models.User, error) {
	user, err := s.repo.Delete(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to delete user %q: %w", username, err)
	}

	s.publish(EventUserDeleted, map[string]string{"username": user.Username})
	return user, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func (s *UserService) publish(action string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(action, payload)
	log.Debug().Str("action", action).Msg("User event published")
}
