package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the payload of legacy bearer tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	IDNumber string   `json:"id_number"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// SessionUser converts claims into the shape used by handlers.
func (c *JWTClaims) SessionUser() *SessionUser {
	return &SessionUser{UserID: c.UserID, IDNumber: c.IDNumber, Role: c.Role, FullName: c.FullName}
}
