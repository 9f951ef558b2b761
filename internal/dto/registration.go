package dto

import (
	"github.com/noah-isme/school-admin-api/internal/models"
)

// RegistrationRequest is the admission form. It is used for both create and
// full update.
type RegistrationRequest struct {
	FirstName            string             `json:"first_name" validate:"required,max=100"`
	MiddleName           *string            `json:"middle_name" validate:"omitempty,max=100"`
	LastName             string             `json:"last_name" validate:"required,max=100"`
	Suffix               *string            `json:"suffix" validate:"omitempty,max=20"`
	BirthDate            string             `json:"birth_date" validate:"required,datetime=2006-01-02"`
	BirthPlace           *string            `json:"birth_place"`
	Gender               string             `json:"gender" validate:"required,oneof=male female other"`
	CivilStatus          *string            `json:"civil_status"`
	Nationality          *string            `json:"nationality"`
	Religion             *string            `json:"religion"`
	Email                string             `json:"email" validate:"required,email"`
	ContactNumber        string             `json:"contact_number" validate:"required,max=32"`
	Address              string             `json:"address" validate:"required"`
	GuardianName         *string            `json:"guardian_name"`
	GuardianContact      *string            `json:"guardian_contact"`
	GuardianRelationship *string            `json:"guardian_relationship"`
	LastSchoolAttended   *string            `json:"last_school_attended"`
	Program              string             `json:"program" validate:"required"`
	YearLevel            int                `json:"year_level" validate:"required,min=1,max=6"`
	StudentType          models.StudentType `json:"student_type" validate:"required,oneof=new transferee returning"`
	SemesterID           *string            `json:"semester_id"`
}

// RegistrationQuery mirrors list filters for registrations.
type RegistrationQuery struct {
	Status     string `form:"status" validate:"omitempty,oneof=pending approved rejected"`
	Program    string `form:"program"`
	YearLevel  *int   `form:"year_level"`
	SemesterID string `form:"semester_id"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
}

// ApproveRegistrationRequest optionally fixes the id number and initial password.
type ApproveRegistrationRequest struct {
	IDNumber string `json:"id_number" validate:"omitempty,max=32"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// ApproveRegistrationResponse returns the created account.
type ApproveRegistrationResponse struct {
	Registration      *models.StudentRegistration `json:"registration"`
	Student           UserInfo                    `json:"student"`
	TemporaryPassword string                      `json:"temporary_password,omitempty"`
}

// RejectRegistrationRequest records why an application was rejected.
type RejectRegistrationRequest struct {
	Remarks string `json:"remarks" validate:"required"`
}
