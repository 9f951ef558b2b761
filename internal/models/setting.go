package models

import "time"

// SettingType describes how a setting value is parsed.
type SettingType string

const (
	SettingTypeString  SettingType = "STRING"
	SettingTypeBoolean SettingType = "BOOLEAN"
)

// Known setting keys.
const (
	SettingRegistrationOpen  = "registration_open"
	SettingEnrollmentOpen    = "enrollment_open"
	SettingActiveSemesterID  = "active_semester_id"
	SettingSchoolDisplayName = "school_display_name"
	SettingDepartmentName    = "department_name"
)

// Setting is a key/value entry in the settings table.
type Setting struct {
	Key         string      `db:"key" json:"key"`
	Value       string      `db:"value" json:"value"`
	Type        SettingType `db:"type" json:"type"`
	Description *string     `db:"description" json:"description,omitempty"`
	UpdatedBy   *string     `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}
