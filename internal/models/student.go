package models

import "time"

// RegistrationStatus tracks the review state of a registration form.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// StudentType classifies an applicant.
type StudentType string

const (
	StudentTypeNew        StudentType = "new"
	StudentTypeTransferee StudentType = "transferee"
	StudentTypeReturning  StudentType = "returning"
)

// StudentRegistration is the admission form submitted by an applicant.
type StudentRegistration struct {
	ID                   string             `db:"id" json:"id"`
	UserID               *string            `db:"user_id" json:"user_id,omitempty"`
	FirstName            string             `db:"first_name" json:"first_name"`
	MiddleName           *string            `db:"middle_name" json:"middle_name,omitempty"`
	LastName             string             `db:"last_name" json:"last_name"`
	Suffix               *string            `db:"suffix" json:"suffix,omitempty"`
	BirthDate            time.Time          `db:"birth_date" json:"birth_date"`
	BirthPlace           *string            `db:"birth_place" json:"birth_place,omitempty"`
	Gender               string             `db:"gender" json:"gender"`
	CivilStatus          *string            `db:"civil_status" json:"civil_status,omitempty"`
	Nationality          *string            `db:"nationality" json:"nationality,omitempty"`
	Religion             *string            `db:"religion" json:"religion,omitempty"`
	Email                string             `db:"email" json:"email"`
	ContactNumber        string             `db:"contact_number" json:"contact_number"`
	Address              string             `db:"address" json:"address"`
	GuardianName         *string            `db:"guardian_name" json:"guardian_name,omitempty"`
	GuardianContact      *string            `db:"guardian_contact" json:"guardian_contact,omitempty"`
	GuardianRelationship *string            `db:"guardian_relationship" json:"guardian_relationship,omitempty"`
	LastSchoolAttended   *string            `db:"last_school_attended" json:"last_school_attended,omitempty"`
	Program              string             `db:"program" json:"program"`
	YearLevel            int                `db:"year_level" json:"year_level"`
	StudentType          StudentType        `db:"student_type" json:"student_type"`
	SemesterID           *string            `db:"semester_id" json:"semester_id,omitempty"`
	Status               RegistrationStatus `db:"registration_status" json:"registration_status"`
	Remarks              *string            `db:"remarks" json:"remarks,omitempty"`
	CreatedAt            time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `db:"updated_at" json:"updated_at"`
}

// RegistrationFilter narrows registration listings.
type RegistrationFilter struct {
	Status     *RegistrationStatus
	Program    string
	YearLevel  *int
	SemesterID string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// StudentProfile joins a student account with its approved registration.
type StudentProfile struct {
	User
	RegistrationID *string `db:"registration_id" json:"registration_id,omitempty"`
	Program        *string `db:"program" json:"program,omitempty"`
	YearLevel      *int    `db:"year_level" json:"year_level,omitempty"`
	ContactNumber  *string `db:"contact_number" json:"contact_number,omitempty"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	Program   string
	YearLevel *int
	Active    *bool
	Search    string
	Page      int
	PageSize  int
}
