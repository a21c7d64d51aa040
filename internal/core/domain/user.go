package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User models a registered account.
type User struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Role         string         `json:"role"`
	IsActive     bool           `json:"is_active"`
	LastLogin    *time.Time     `json:"last_login,omitempty"`
	Preferences  map[string]any `json:"preferences,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Identity is the authenticated actor attached to a request once its bearer
// token has been validated. It carries no credential material.
type Identity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// CanModify reports whether the identity may mutate a resource owned by ownerID.
func (i Identity) CanModify(ownerID string) bool {
	return i.ID == ownerID || i.Role == RoleAdmin
}
