package dto

import "github.com/noah-isme/school-admin-api/internal/models"

// CreateAssessmentRequest bills a student for a semester. Amounts are in cents.
type CreateAssessmentRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	SemesterID   string `json:"semester_id" validate:"required"`
	TuitionCents int64  `json:"tuition_cents" validate:"min=0"`
	MiscCents    int64  `json:"misc_cents" validate:"min=0"`
	LabCents     int64  `json:"lab_cents" validate:"min=0"`
}

// AssessmentQuery mirrors list filters for assessments.
type AssessmentQuery struct {
	StudentID  string `form:"student_id"`
	SemesterID string `form:"semester_id"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// Ledger is a student's statement of account.
type Ledger struct {
	StudentID     string              `json:"student_id"`
	Lines         []models.LedgerLine `json:"lines"`
	AssessedCents int64               `json:"assessed_cents"`
	PaidCents     int64               `json:"paid_cents"`
	BalanceCents  int64               `json:"balance_cents"`
}

// CreatePaymentRequest is the form part of a multipart payment submission.
type CreatePaymentRequest struct {
	StudentID       string `form:"student_id"`
	SemesterID      string `form:"semester_id" validate:"required"`
	AmountCents     int64  `form:"amount_cents" validate:"required,gt=0"`
	Method          string `form:"method" validate:"required,oneof=cash bank_transfer gcash card other"`
	ReferenceNumber string `form:"reference_number" validate:"omitempty,max=100"`
}

// VerifyPaymentRequest accepts or rejects a pending payment.
type VerifyPaymentRequest struct {
	Status  models.PaymentStatus `json:"status" validate:"required,oneof=verified rejected"`
	Remarks *string              `json:"remarks"`
}

// PaymentQuery mirrors list filters for payments.
type PaymentQuery struct {
	StudentID  string `form:"student_id"`
	SemesterID string `form:"semester_id"`
	Status     string `form:"status" validate:"omitempty,oneof=pending verified rejected"`
	Method     string `form:"method"`
	From       string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Format     string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
