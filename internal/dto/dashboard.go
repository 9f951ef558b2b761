package dto

// AdminDashboard captures institution-wide counters.
type AdminDashboard struct {
	SemesterID           string `db:"-" json:"semester_id"`
	TotalStudents        int    `db:"total_students" json:"total_students"`
	TotalStaff           int    `db:"total_staff" json:"total_staff"`
	PendingRegistrations int    `db:"pending_registrations" json:"pending_registrations"`
	OpenRequests         int    `db:"open_requests" json:"open_requests"`
	RequirementsToVerify int    `db:"requirements_to_verify" json:"requirements_to_verify"`
	Schedules            int    `db:"schedules" json:"schedules"`
	ActiveEnrollments    int    `db:"active_enrollments" json:"active_enrollments"`
}

// StudentDashboard captures counters scoped to the calling student.
type StudentDashboard struct {
	SemesterID          string `db:"-" json:"semester_id"`
	EnrolledSubjects    int    `db:"enrolled_subjects" json:"enrolled_subjects"`
	EnrolledUnits       int    `db:"enrolled_units" json:"enrolled_units"`
	OpenRequests        int    `db:"open_requests" json:"open_requests"`
	PendingRequirements int    `db:"pending_requirements" json:"pending_requirements"`
	UnreadNotifications int    `db:"unread_notifications" json:"unread_notifications"`
	BalanceCents        int64  `db:"balance_cents" json:"balance_cents"`
}

// AccountingDashboard captures payment counters for a semester.
type AccountingDashboard struct {
	SemesterID       string `db:"-" json:"semester_id"`
	PendingPayments  int    `db:"pending_payments" json:"pending_payments"`
	VerifiedToday    int    `db:"verified_today" json:"verified_today"`
	CollectedCents   int64  `db:"collected_cents" json:"collected_cents"`
	AssessedCents    int64  `db:"assessed_cents" json:"assessed_cents"`
	OutstandingCents int64  `db:"-" json:"outstanding_cents"`
	AssessedStudents int    `db:"assessed_students" json:"assessed_students"`
}
