package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
)

// optionalTime keeps the distinction JSON pointers lose on partial updates:
// a key that is absent (set false), explicitly null (set true, value nil) or
// carrying a timestamp (set true, value non-nil).
type optionalTime struct {
	set   bool
	value *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(data, []byte("null")) {
		o.value = nil
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

// envelope is the response body every endpoint returns:
// {success, data?, message?, pagination?}. pagination appears only on list
// results.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// --- Auth requests / responses ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Username    *string        `json:"username"`
	Email       *string        `json:"email" validate:"omitempty,email"`
	Preferences map[string]any `json:"preferences"`
}

// userResponse is the public view of an account: never the hash.
type userResponse struct {
	ID          string         `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Role        string         `json:"role"`
	LastLogin   *time.Time     `json:"last_login,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

type authData struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		LastLogin:   u.LastLogin,
		Preferences: u.Preferences,
	}
}

// --- Broadcast requests ---

type createBroadcastRequest struct {
	Title      string     `json:"title"       validate:"required,max=200"`
	Message    string     `json:"message"     validate:"required,max=5000"`
	Urgency    string     `json:"urgency"     validate:"omitempty,oneof=low medium high"`
	Type       string     `json:"type"        validate:"omitempty,oneof=announcement alert maintenance update news meeting"`
	Tags       []string   `json:"tags"`
	ExpiryDate *time.Time `json:"expiry_date"`
	Priority   int        `json:"priority"`
}

// updateBroadcastRequest mirrors the unrestricted overwrite contract: every
// key present in the payload is applied, created_by, status and views
// included. Nil pointers mean "not supplied"; expiry_date additionally
// accepts an explicit null to clear the stored value.
type updateBroadcastRequest struct {
	Title      *string      `json:"title"       validate:"omitempty,max=200"`
	Message    *string      `json:"message"     validate:"omitempty,max=5000"`
	Urgency    *string      `json:"urgency"     validate:"omitempty,oneof=low medium high"`
	Type       *string      `json:"type"        validate:"omitempty,oneof=announcement alert maintenance update news meeting"`
	Tags       *[]string    `json:"tags"`
	CreatedBy  *string      `json:"created_by"`
	ExpiryDate optionalTime `json:"expiry_date"`
	Status     *string      `json:"status"      validate:"omitempty,oneof=active expired archived"`
	Views      *int64       `json:"views"`
	Priority   *int         `json:"priority"`
}
