package models

import "time"

// EnrollmentStatus tracks a student's standing in a schedule.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// StudentEnrollment links a student to a schedule. Unique per pair.
type StudentEnrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	ScheduleID string           `db:"schedule_id" json:"schedule_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	Grade      *string          `db:"grade" json:"grade,omitempty"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail joins an enrollment with its schedule and subject.
type EnrollmentDetail struct {
	StudentEnrollment
	StudentName  string `db:"student_name" json:"student_name"`
	IDNumber     string `db:"id_number" json:"id_number"`
	SemesterID   string `db:"semester_id" json:"semester_id"`
	SubjectCode  string `db:"subject_code" json:"subject_code"`
	SubjectTitle string `db:"subject_title" json:"subject_title"`
	Units        int    `db:"units" json:"units"`
	Section      string `db:"section" json:"section"`
	Day          string `db:"day" json:"day"`
	StartTime    string `db:"start_time" json:"start_time"`
	EndTime      string `db:"end_time" json:"end_time"`
}

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	StudentID  string
	ScheduleID string
	SemesterID string
	Status     *EnrollmentStatus
	Page       int
	PageSize   int
}
