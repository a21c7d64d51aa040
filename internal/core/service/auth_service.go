package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
	"github.com/noticeboard/notice-board-api/internal/core/ports"
	"github.com/noticeboard/notice-board-api/internal/observability/metrics"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// AuthService implements registration, login, token issuance/validation and
// profile access. The signing key is injected configuration, never global
// state, so tests and environments can swap it freely.
type AuthService struct {
	repo      ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Register creates an account and issues a token. An existing email or
// username is caught by a lookup before the bcrypt hash is computed; the
// store's insert-time constraint remains the race-safe backstop. Either way
// the conflict surfaces as ErrUserExists without revealing which field
// collided.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	var missing []string
	if input.Username == "" {
		missing = append(missing, "username is required")
	}
	if input.Email == "" {
		missing = append(missing, "email is required")
	}
	if input.Password == "" {
		missing = append(missing, "password is required")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(missing...)
	}

	if _, err := s.repo.FindByEmailOrUsername(ctx, input.Email, input.Username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
		Preferences:  map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.Inc()
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")

	return &ports.AuthResult{User: created, Token: token}, nil
}

// Login verifies credentials and issues a token. A wrong password and an
// unknown email are indistinguishable to the caller; the account-active check
// runs only after the password verified, so inactive accounts with a wrong
// password still get the generic credentials error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrAccountDeactivated
	}

	now := time.Now().UTC()
	if err := s.repo.SetLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.AuthResult{User: user, Token: token}, nil
}

// ValidateToken checks signature integrity and expiry. Any failure (malformed
// token, wrong signature, expired claim) collapses into ErrInvalidToken.
func (s *AuthService) ValidateToken(token string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	return domain.Identity{ID: sub, Role: role}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile changes username, email and preferences only. Role, password
// hash and the active flag are unreachable through this path.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ports.UpdateProfileInput) (*domain.User, error) {
	if input.Username != nil && *input.Username == "" {
		return nil, domain.NewValidationError("username cannot be empty")
	}
	if input.Email != nil && *input.Email == "" {
		return nil, domain.NewValidationError("email cannot be empty")
	}
	return s.repo.Update(ctx, userID, input)
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
