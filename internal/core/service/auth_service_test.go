package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
	"github.com/noticeboard/notice-board-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[string]*domain.User // keyed by id
	nextID  int
	inserts int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.inserts++
	// Mirrors the unique indexes: conflict on either email or username.
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = string(rune('a' + r.nextID - 1))
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmailOrUsername(_ context.Context, email, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, input ports.UpdateProfileInput) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for otherID, other := range r.users {
		if otherID == id {
			continue
		}
		if input.Username != nil && other.Username == *input.Username {
			return nil, domain.ErrUserExists
		}
		if input.Email != nil && other.Email == *input.Email {
			return nil, domain.ErrUserExists
		}
	}
	if input.Username != nil {
		u.Username = *input.Username
	}
	if input.Email != nil {
		u.Email = *input.Email
	}
	if input.Preferences != nil {
		u.Preferences = input.Preferences
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func newAuthService(repo ports.UserRepository) *AuthService {
	return NewAuthService(repo, "secret", 7*24*time.Hour, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "pass123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	user := result.User
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected default role: %s", user.Role)
	}
	if !user.IsActive {
		t.Fatalf("expected new account to be active")
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected 2 violations (email, password), got %v", ve.Fields)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "pass",
	}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "robert", Email: "bob@example.com", Password: "pass",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "pass",
	})
	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob", Email: "bob2@example.com", Password: "pass",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

// A conflicting registration is caught by the lookup before any insert is
// attempted; the unique indexes stay as the concurrent-write backstop.
func TestAuthService_Register_DuplicateCaughtBeforeInsert(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "ivy", Email: "ivy@example.com", Password: "pass",
	}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "ivy", Email: "ivy2@example.com", Password: "pass",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if repo.inserts != 1 {
		t.Fatalf("conflicting register reached the store: %d inserts", repo.inserts)
	}
}

// Uniqueness is case-sensitive: usernames differing only by case are both
// accepted.
func TestAuthService_Register_UsernameCaseSensitive(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "carol", Email: "carol@example.com", Password: "pass",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "Carol", Email: "carol2@example.com", Password: "pass",
	}); err != nil {
		t.Fatalf("expected case-variant username to be accepted, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "carol", Email: "carol@example.com", Password: "s3cret",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if result.User.LastLogin == nil {
		t.Fatalf("expected last login to be set")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(result.Token, claims, func(t *jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != result.User.ID {
		t.Fatalf("expected sub %q, got %v", result.User.ID, claims["sub"])
	}
	if claims["role"] != domain.RoleUser {
		t.Fatalf("expected role %s, got %v", domain.RoleUser, claims["role"])
	}
}

// A wrong password and a nonexistent email must be indistinguishable.
func TestAuthService_Login_WrongPasswordAndUnknownEmailMatch(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Username: "dave", Email: "dave@example.com", Password: "goodpass",
	})

	_, errWrongPass := svc.Login(context.Background(), "dave@example.com", "badpass")
	_, errNoUser := svc.Login(context.Background(), "ghost@example.com", "whatever")

	if !errors.Is(errWrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrongPass)
	}
	if !errors.Is(errNoUser, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Fatalf("error messages differ: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "eve", Email: "eve@example.com", Password: "pass",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	repo.users[result.User.ID].IsActive = false

	// Correct password on a deactivated account is a distinct failure.
	if _, err := svc.Login(context.Background(), "eve@example.com", "pass"); !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}

	// Wrong password on a deactivated account still gets the generic error.
	if _, err := svc.Login(context.Background(), "eve@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Token validation
// ---------------------------------------------------------------------------

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthService_ValidateToken_Valid(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	token := signToken(t, "secret", jwt.MapClaims{
		"sub":  "u1",
		"role": domain.RoleAdmin,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	identity, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if identity.ID != "u1" || identity.Role != domain.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

// A token is valid through its seven-day window and invalid the second after.
func TestAuthService_ValidateToken_ExpiryBoundary(t *testing.T) {
	svc := newAuthService(newStubUserRepo())
	issued := time.Now().Add(-7 * 24 * time.Hour)

	stillValid := signToken(t, "secret", jwt.MapClaims{
		"sub": "u1", "role": domain.RoleUser,
		"iat": issued.Unix(),
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	if _, err := svc.ValidateToken(stillValid); err != nil {
		t.Fatalf("token inside window rejected: %v", err)
	}

	justExpired := signToken(t, "secret", jwt.MapClaims{
		"sub": "u1", "role": domain.RoleUser,
		"iat": issued.Unix(),
		"exp": time.Now().Add(-time.Second).Unix(),
	})
	if _, err := svc.ValidateToken(justExpired); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestAuthService_ValidateToken_WrongKey(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	forged := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "u1", "role": domain.RoleUser,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := svc.ValidateToken(forged); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestAuthService_ValidateToken_Malformed(t *testing.T) {
	svc := newAuthService(newStubUserRepo())
	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestAuthService_UpdateProfile_AllowedFieldsOnly(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "frank", Email: "frank@example.com", Password: "pass",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	newName := "francis"
	updated, err := svc.UpdateProfile(context.Background(), result.User.ID, ports.UpdateProfileInput{
		Username:    &newName,
		Preferences: map[string]any{"theme": "dark"},
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.Username != "francis" {
		t.Fatalf("username not updated: %s", updated.Username)
	}
	if updated.Preferences["theme"] != "dark" {
		t.Fatalf("preferences not updated: %v", updated.Preferences)
	}
	if updated.Role != domain.RoleUser || !updated.IsActive {
		t.Fatalf("role or active flag changed through profile path")
	}
}

func TestAuthService_UpdateProfile_ConflictingUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Username: "gina", Email: "gina@example.com", Password: "pass",
	})
	result, _ := svc.Register(context.Background(), ports.RegisterInput{
		Username: "hank", Email: "hank@example.com", Password: "pass",
	})

	taken := "gina"
	if _, err := svc.UpdateProfile(context.Background(), result.User.ID, ports.UpdateProfileInput{Username: &taken}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}
