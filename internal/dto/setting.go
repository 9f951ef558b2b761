package dto

// UpdateSettingRequest writes a setting value.
type UpdateSettingRequest struct {
	Value       string  `json:"value" validate:"max=1000"`
	Type        string  `json:"type" validate:"omitempty,oneof=STRING BOOLEAN"`
	Description *string `json:"description"`
}

// ActivityQuery mirrors list filters for the activity log.
type ActivityQuery struct {
	UserID   string `form:"user_id"`
	Action   string `form:"action"`
	Resource string `form:"resource"`
	From     string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
