// Package repository persists user records and translates store-specific
// failures into the typed errors below.
package repository

import (
	"context"
	"errors"

	"github.com/isdelr/user-directory/internal/models"
)

var (
	// ErrNotFound is returned when no user matches the given username.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateKey is returned when a write would break username uniqueness.
	ErrDuplicateKey = errors.New("duplicate username")
)

// UserRepository is the persistence contract for the users collection.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
	// Update atomically applies changes to the user named username and
	// returns the updated record.
	Update(ctx context.Context, username string, changes models.UserUpdate) (models.User, error)
	// Delete atomically removes the user named username and returns it.
	Delete(ctx context.Context, username string) (models.User, error)
	Ping(ctx context.Context) error
}
