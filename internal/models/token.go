package models

import "time"

// UserSession is a server-side record of an opaque session token.
type UserSession struct {
	ID        string    `db:"id" json:"id"`
	Token     string    `db:"token" json:"-"`
	UserID    string    `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *UserSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionUser is attached to the request context once a session is validated.
type SessionUser struct {
	UserID    string   `json:"user_id"`
	SessionID string   `json:"session_id"`
	IDNumber  string   `json:"id_number"`
	Role      UserRole `json:"role"`
	FullName  string   `json:"full_name"`
}

// IsStaff reports whether the caller is admin or accounting.
func (u *SessionUser) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleAccounting
}

// CanAccessStudent reports whether the caller may read data owned by studentID.
func (u *SessionUser) CanAccessStudent(studentID string) bool {
	return u.IsStaff() || u.UserID == studentID
}
