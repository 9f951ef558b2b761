package dto

import "github.com/noah-isme/school-admin-api/internal/models"

// SemesterRequest creates or replaces a semester.
type SemesterRequest struct {
	Name       string      `json:"name" validate:"required,max=100"`
	SchoolYear string      `json:"school_year" validate:"required,max=20"`
	Term       models.Term `json:"term" validate:"required,oneof=first second summer"`
	StartDate  string      `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string      `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// SubjectRequest creates or replaces a catalogue subject.
type SubjectRequest struct {
	Code         string  `json:"code" validate:"required,max=32"`
	Title        string  `json:"title" validate:"required,max=200"`
	Units        int     `json:"units" validate:"required,min=1,max=12"`
	LectureHours int     `json:"lecture_hours" validate:"min=0"`
	LabHours     int     `json:"lab_hours" validate:"min=0"`
	Prerequisite *string `json:"prerequisite"`
}

// CurriculumRequest places a subject in a program term.
type CurriculumRequest struct {
	Program   string      `json:"program" validate:"required"`
	YearLevel int         `json:"year_level" validate:"required,min=1,max=6"`
	Term      models.Term `json:"term" validate:"required,oneof=first second summer"`
	SubjectID string      `json:"subject_id" validate:"required"`
}

// CurriculumQuery mirrors list filters for curriculum entries.
type CurriculumQuery struct {
	Program   string `form:"program"`
	YearLevel *int   `form:"year_level"`
	Term      string `form:"term" validate:"omitempty,oneof=first second summer"`
}

// ScheduleRequest creates or replaces a timetable slot.
type ScheduleRequest struct {
	CurriculumID string  `json:"curriculum_id" validate:"required"`
	SubjectID    string  `json:"subject_id" validate:"required"`
	SemesterID   string  `json:"semester_id" validate:"required"`
	Section      string  `json:"section" validate:"required,max=32"`
	Day          string  `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime    string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string  `json:"end_time" validate:"required,datetime=15:04"`
	Room         *string `json:"room"`
	Instructor   *string `json:"instructor"`
	MaxCapacity  int     `json:"max_capacity" validate:"min=0"`
}

// ScheduleQuery mirrors list filters for schedules.
type ScheduleQuery struct {
	SemesterID string `form:"semester_id"`
	SubjectID  string `form:"subject_id"`
	Program    string `form:"program"`
	YearLevel  *int   `form:"year_level"`
	Day        string `form:"day"`
	Section    string `form:"section"`
}

// RecountRequest scopes an enrollment recount to one semester.
type RecountRequest struct {
	SemesterID string `json:"semester_id"`
}

// JobAccepted is returned for work handed to the background queue.
type JobAccepted struct {
	JobID string `json:"job_id"`
	Type  string `json:"type"`
}

// CreateEnrollmentRequest enrolls a student in a schedule. StudentID is
// ignored for student callers.
type CreateEnrollmentRequest struct {
	StudentID  string `json:"student_id"`
	ScheduleID string `json:"schedule_id" validate:"required"`
}

// UpdateEnrollmentStatusRequest moves an enrollment between states.
type UpdateEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" validate:"required,oneof=enrolled dropped completed"`
}

// UpdateGradeRequest records or clears a final grade.
type UpdateGradeRequest struct {
	Grade *string `json:"grade" validate:"omitempty,max=8"`
}

// EnrollmentQuery mirrors list filters for enrollments.
type EnrollmentQuery struct {
	StudentID  string `form:"student_id"`
	ScheduleID string `form:"schedule_id"`
	SemesterID string `form:"semester_id"`
	Status     string `form:"status" validate:"omitempty,oneof=enrolled dropped completed"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// StudentQuery mirrors list filters for students.
type StudentQuery struct {
	Program   string `form:"program"`
	YearLevel *int   `form:"year_level"`
	Active    *bool  `form:"active"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}
