package ports

import (
	"context"
	"time"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
)

// UpdateProfileInput carries the profile fields a user may change. Nil
// pointers mean "not supplied". Role, password hash and the active flag are
// absent: they cannot be reached through the profile path.
type UpdateProfileInput struct {
	Username    *string
	Email       *string
	Preferences map[string]any
}

// UserRepository defines persistence operations for user accounts.
// Uniqueness of email and username is enforced by the storage layer at
// insert time, not by a read-then-write check.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, input UpdateProfileInput) (*domain.User, error)
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}
