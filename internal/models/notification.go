package models

import "time"

// Notification types written by the workflows.
const (
	NotificationRequestUpdate      = "request_update"
	NotificationRequirementUpdate  = "requirement_update"
	NotificationPaymentUpdate      = "payment_update"
	NotificationRegistrationUpdate = "registration_update"
	NotificationAnnouncement       = "announcement"
)

// Notification is an in-app message for a single user.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	RequestID *string   `db:"request_id" json:"request_id,omitempty"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NotificationFilter narrows a user's notification listing.
type NotificationFilter struct {
	UserID   string
	IsRead   *bool
	Type     string
	Page     int
	PageSize int
}
