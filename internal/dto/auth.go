package dto

import (
	"time"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// LoginRequest carries credentials for session and legacy token login.
type LoginRequest struct {
	IDNumber  string `json:"id_number" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID           string          `json:"id"`
	IDNumber     string          `json:"id_number"`
	Role         models.UserRole `json:"role"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	FullName     string          `json:"full_name"`
	Email        *string         `json:"email,omitempty"`
	ProfilePhoto *string         `json:"profile_photo,omitempty"`
	Active       bool            `json:"active"`
	LastLogin    *time.Time      `json:"last_login,omitempty"`
}

// NewUserInfo projects a user row onto its public shape.
func NewUserInfo(u *models.User) UserInfo {
	return UserInfo{
		ID:           u.ID,
		IDNumber:     u.IDNumber,
		Role:         u.Role,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.FullName(),
		Email:        u.Email,
		ProfilePhoto: u.ProfilePhoto,
		Active:       u.Active,
		LastLogin:    u.LastLogin,
	}
}

// LoginResponse returns the opaque session token and the user.
type LoginResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserInfo  `json:"user"`
}

// ChangePasswordRequest updates the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,nefield=CurrentPassword"`
}

// TokenResponse is returned by the legacy bearer token endpoint.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
