package ports

import (
	"context"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
)

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthService implements credential verification, bearer-token issuance and
// profile access.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// ValidateToken checks signature and expiry only; it never consults the
	// store, so a deactivated account's outstanding token stays valid until
	// it expires.
	ValidateToken(token string) (domain.Identity, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error)
}
