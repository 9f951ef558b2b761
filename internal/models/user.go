package models

import (
	"strings"
	"time"
)

// UserRole represents the roles recognised by the session gates.
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleAdmin      UserRole = "admin"
	RoleAccounting UserRole = "accounting"
)

// User represents an account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	IDNumber     string     `db:"id_number" json:"id_number"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        *string    `db:"email" json:"email,omitempty"`
	ProfilePhoto *string    `db:"profile_photo" json:"profile_photo,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination builds pagination metadata from normalised paging inputs.
func NewPagination(page, pageSize, total int) *Pagination {
	page, pageSize = NormalizePage(page, pageSize)
	return &Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}

// NormalizePage clamps paging inputs to sane defaults.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
