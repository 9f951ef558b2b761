package dto

import "github.com/noah-isme/school-admin-api/internal/models"

// CreateAccountRequest creates a user of any role.
type CreateAccountRequest struct {
	IDNumber  string          `json:"id_number" validate:"required,max=32"`
	Password  string          `json:"password" validate:"required,min=8"`
	Role      models.UserRole `json:"role" validate:"required,oneof=student admin accounting"`
	FirstName string          `json:"first_name" validate:"required,max=100"`
	LastName  string          `json:"last_name" validate:"required,max=100"`
	Email     *string         `json:"email" validate:"omitempty,email"`
}

// UpdateAccountRequest patches an account.
type UpdateAccountRequest struct {
	FirstName *string          `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string          `json:"last_name" validate:"omitempty,max=100"`
	Email     *string          `json:"email" validate:"omitempty,email"`
	Role      *models.UserRole `json:"role" validate:"omitempty,oneof=student admin accounting"`
	Active    *bool            `json:"active"`
}

// ResetPasswordRequest sets an account password as an administrator.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// AccountQuery mirrors list filters for accounts.
type AccountQuery struct {
	Role      string `form:"role" validate:"omitempty,oneof=student admin accounting"`
	Active    *bool  `form:"active"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}
