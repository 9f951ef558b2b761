package models

import "time"

// Subject is a course offering in the catalogue.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Title        string    `db:"title" json:"title"`
	Units        int       `db:"units" json:"units"`
	LectureHours int       `db:"lecture_hours" json:"lecture_hours"`
	LabHours     int       `db:"lab_hours" json:"lab_hours"`
	Prerequisite *string   `db:"prerequisite" json:"prerequisite,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Curriculum places a subject in a program's year level and term.
type Curriculum struct {
	ID        string    `db:"id" json:"id"`
	Program   string    `db:"program" json:"program"`
	YearLevel int       `db:"year_level" json:"year_level"`
	Term      Term      `db:"term" json:"term"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CurriculumEntry is a curriculum row joined with its subject.
type CurriculumEntry struct {
	Curriculum
	SubjectCode  string `db:"subject_code" json:"subject_code"`
	SubjectTitle string `db:"subject_title" json:"subject_title"`
	Units        int    `db:"units" json:"units"`
}

// CurriculumFilter narrows curriculum listings.
type CurriculumFilter struct {
	Program   string
	YearLevel *int
	Term      *Term
}
