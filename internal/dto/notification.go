package dto

import "github.com/noah-isme/school-admin-api/internal/models"

// NotificationQuery mirrors list filters for the caller's notifications.
type NotificationQuery struct {
	IsRead   *bool  `form:"is_read"`
	Type     string `form:"type"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// BroadcastRequest fans an announcement out to users.
type BroadcastRequest struct {
	Role    *models.UserRole `json:"role" validate:"omitempty,oneof=student admin accounting"`
	Message string           `json:"message" validate:"required,max=2000"`
}

// UnreadCount is returned by the unread counter endpoint.
type UnreadCount struct {
	Unread int `json:"unread"`
}

// AffectedRows reports how many rows a bulk mutation touched.
type AffectedRows struct {
	Affected int64 `json:"affected"`
}
