package models

import "time"

// Schedule is a timetable slot for a subject section in a semester.
type Schedule struct {
	ID            string    `db:"id" json:"id"`
	CurriculumID  string    `db:"curriculum_id" json:"curriculum_id"`
	SubjectID     string    `db:"subject_id" json:"subject_id"`
	SemesterID    string    `db:"semester_id" json:"semester_id"`
	Section       string    `db:"section" json:"section"`
	Day           string    `db:"day" json:"day"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	Room          *string   `db:"room" json:"room,omitempty"`
	Instructor    *string   `db:"instructor" json:"instructor,omitempty"`
	MaxCapacity   int       `db:"max_capacity" json:"max_capacity"`
	EnrolledCount int       `db:"enrolled_count" json:"enrolled_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleDetail is a schedule joined with subject and curriculum info.
type ScheduleDetail struct {
	Schedule
	SubjectCode  string `db:"subject_code" json:"subject_code"`
	SubjectTitle string `db:"subject_title" json:"subject_title"`
	Units        int    `db:"units" json:"units"`
	Program      string `db:"program" json:"program"`
	YearLevel    int    `db:"year_level" json:"year_level"`
}

// ScheduleFilter narrows schedule listings.
type ScheduleFilter struct {
	SemesterID string
	SubjectID  string
	Program    string
	YearLevel  *int
	Day        string
	Section    string
}
