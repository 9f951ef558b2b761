package models

import (
	"time"

	"github.com/lib/pq"
)

// RequestStatus tracks a document request through the registrar.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestProcessing RequestStatus = "processing"
	RequestReady      RequestStatus = "ready"
	RequestReleased   RequestStatus = "released"
	RequestRejected   RequestStatus = "rejected"
)

// DocumentRequest is a student's request for a school document.
type DocumentRequest struct {
	ID           string         `db:"id" json:"id"`
	StudentID    string         `db:"student_id" json:"student_id"`
	DocumentType string         `db:"document_type" json:"document_type"`
	Purpose      string         `db:"purpose" json:"purpose"`
	Status       RequestStatus  `db:"status" json:"status"`
	Documents    pq.StringArray `db:"documents" json:"documents"`
	Remarks      *string        `db:"remarks" json:"remarks,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// RequestFilter narrows document request listings.
type RequestFilter struct {
	StudentID    string
	Status       *RequestStatus
	DocumentType string
	Page         int
	PageSize     int
}
