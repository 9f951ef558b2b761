package models

import (
	"encoding/json"
	"time"
)

// Activity actions recorded by the auth flows. Route-level entries use the HTTP method.
const (
	ActivityLogin          = "LOGIN"
	ActivityLogout         = "LOGOUT"
	ActivityPasswordChange = "PASSWORD_CHANGE"
)

// ActivityLog is an audit row for a mutating request.
type ActivityLog struct {
	ID         string          `db:"id" json:"id"`
	UserID     *string         `db:"user_id" json:"user_id,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resource_id,omitempty"`
	Details    json.RawMessage `db:"details" json:"details,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address"`
	UserAgent  string          `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// ActivityFilter narrows activity log listings.
type ActivityFilter struct {
	UserID   string
	Action   string
	Resource string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
