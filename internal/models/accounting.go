package models

import "time"

// PaymentStatus tracks verification of a payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// Assessment is the fee breakdown billed to a student for a semester.
// Amounts are stored in cents.
type Assessment struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SemesterID   string    `db:"semester_id" json:"semester_id"`
	TuitionCents int64     `db:"tuition_cents" json:"tuition_cents"`
	MiscCents    int64     `db:"misc_cents" json:"misc_cents"`
	LabCents     int64     `db:"lab_cents" json:"lab_cents"`
	TotalCents   int64     `db:"total_cents" json:"total_cents"`
	CreatedBy    *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AssessmentFilter narrows assessment listings.
type AssessmentFilter struct {
	StudentID  string
	SemesterID string
	Page       int
	PageSize   int
}

// Payment is money received against a student's account.
type Payment struct {
	ID              string        `db:"id" json:"id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	SemesterID      string        `db:"semester_id" json:"semester_id"`
	AmountCents     int64         `db:"amount_cents" json:"amount_cents"`
	Method          string        `db:"method" json:"method"`
	ReferenceNumber *string       `db:"reference_number" json:"reference_number,omitempty"`
	ProofPath       *string       `db:"proof_path" json:"proof_path,omitempty"`
	Status          PaymentStatus `db:"status" json:"status"`
	Remarks         *string       `db:"remarks" json:"remarks,omitempty"`
	RecordedBy      *string       `db:"recorded_by" json:"recorded_by,omitempty"`
	VerifiedBy      *string       `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt      *time.Time    `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// PaymentDetail joins a payment with the payer's identity.
type PaymentDetail struct {
	Payment
	IDNumber    string `db:"id_number" json:"id_number"`
	StudentName string `db:"student_name" json:"student_name"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	StudentID  string
	SemesterID string
	Status     *PaymentStatus
	Method     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// LedgerLine summarises one semester of a student's account.
type LedgerLine struct {
	SemesterID    string `db:"semester_id" json:"semester_id"`
	SemesterName  string `db:"semester_name" json:"semester_name"`
	AssessedCents int64  `db:"assessed_cents" json:"assessed_cents"`
	PaidCents     int64  `db:"paid_cents" json:"paid_cents"`
	BalanceCents  int64  `db:"balance_cents" json:"balance_cents"`
}

// AccountingSummary aggregates collections for a semester or overall.
type AccountingSummary struct {
	AssessedCents        int64 `db:"assessed_cents" json:"assessed_cents"`
	CollectedCents       int64 `db:"collected_cents" json:"collected_cents"`
	PendingCents         int64 `db:"pending_cents" json:"pending_cents"`
	OutstandingCents     int64 `db:"outstanding_cents" json:"outstanding_cents"`
	PendingPaymentsCount int   `db:"pending_payments_count" json:"pending_payments_count"`
}
