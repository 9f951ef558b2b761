package dto

import (
	"time"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// CreateDocumentRequest is the form part of a multipart document request.
type CreateDocumentRequest struct {
	StudentID    string `form:"student_id"`
	DocumentType string `form:"document_type" validate:"required,max=100"`
	Purpose      string `form:"purpose" validate:"required,max=500"`
}

// UpdateRequestStatusRequest moves a request through the registrar workflow.
type UpdateRequestStatusRequest struct {
	Status  models.RequestStatus `json:"status" validate:"required,oneof=pending processing ready released rejected"`
	Remarks *string              `json:"remarks"`
}

// RequestQuery mirrors list filters for document requests.
type RequestQuery struct {
	StudentID    string `form:"student_id"`
	Status       string `form:"status" validate:"omitempty,oneof=pending processing ready released rejected"`
	DocumentType string `form:"document_type"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

// FileLink is a signed download link for a stored upload.
type FileLink struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateRequirementRequest adds a checklist item for a student.
type CreateRequirementRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Name      string `json:"name" validate:"required,max=200"`
}

// VerifyRequirementRequest accepts or rejects a submitted requirement.
type VerifyRequirementRequest struct {
	Status  models.RequirementStatus `json:"status" validate:"required,oneof=verified rejected"`
	Remarks *string                  `json:"remarks"`
}

// RequirementQuery mirrors list filters for requirements.
type RequirementQuery struct {
	StudentID string `form:"student_id"`
	Status    string `form:"status" validate:"omitempty,oneof=pending submitted verified rejected"`
}
