package models

import "time"

// RequirementStatus tracks a submitted admission requirement.
type RequirementStatus string

const (
	RequirementPending   RequirementStatus = "pending"
	RequirementSubmitted RequirementStatus = "submitted"
	RequirementVerified  RequirementStatus = "verified"
	RequirementRejected  RequirementStatus = "rejected"
)

// Requirement is a document a student must submit.
type Requirement struct {
	ID         string            `db:"id" json:"id"`
	StudentID  string            `db:"student_id" json:"student_id"`
	Name       string            `db:"name" json:"name"`
	FilePath   *string           `db:"file_path" json:"file_path,omitempty"`
	Status     RequirementStatus `db:"status" json:"status"`
	Remarks    *string           `db:"remarks" json:"remarks,omitempty"`
	VerifiedBy *string           `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt *time.Time        `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
}

// RequirementFilter narrows requirement listings.
type RequirementFilter struct {
	StudentID string
	Status    *RequirementStatus
}
