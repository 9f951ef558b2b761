package models

import "time"

// Term identifies a slot in the academic year.
type Term string

const (
	TermFirst  Term = "first"
	TermSecond Term = "second"
	TermSummer Term = "summer"
)

// Semester is an academic period that schedules, assessments and payments belong to.
type Semester struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	SchoolYear string    `db:"school_year" json:"school_year"`
	Term       Term      `db:"term" json:"term"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
