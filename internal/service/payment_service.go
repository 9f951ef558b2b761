package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/export"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

type paymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	FindByID(ctx context.Context, id string) (*models.PaymentDetail, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	ListAll(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, error)
	Verify(ctx context.Context, id string, status models.PaymentStatus, remarks *string, verifierID string, notification *models.Notification) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderDocument(doc export.Document) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

var paymentExportHeaders = []string{"Date", "ID Number", "Student", "Amount", "Method", "Reference", "Status"}

// PaymentService records and verifies payments.
type PaymentService struct {
	repo      paymentRepository
	files     fileStore
	settings  settingReader
	csv       csvRenderer
	pdf       pdfRenderer
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// PaymentServiceParams groups constructor dependencies.
type PaymentServiceParams struct {
	Repo      paymentRepository
	Files     fileStore
	Settings  settingReader
	CSV       csvRenderer
	PDF       pdfRenderer
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(params PaymentServiceParams) *PaymentService {
	validate, logger := defaults(params.Validator, params.Logger)
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &PaymentService{
		repo:      params.Repo,
		files:     params.Files,
		settings:  params.Settings,
		csv:       csv,
		pdf:       pdf,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create records a payment. Students submit for themselves with optional
// proof; staff-recorded payments carry the recorder id.
func (s *PaymentService) Create(ctx context.Context, caller *models.SessionUser, req dto.CreatePaymentRequest, proof *multipart.FileHeader) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid payment payload")
	}
	studentID := req.StudentID
	if caller.Role == models.RoleStudent {
		studentID = caller.UserID
	}
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}

	payment := &models.Payment{
		StudentID:   studentID,
		SemesterID:  req.SemesterID,
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Status:      models.PaymentPending,
	}
	if ref := strings.TrimSpace(req.ReferenceNumber); ref != "" {
		payment.ReferenceNumber = &ref
	}
	if caller.IsStaff() {
		payment.RecordedBy = &caller.UserID
	}
	if proof != nil {
		stored, err := storeUpload(s.files, s.metrics, storage.CategoryPayments, proof, proofMIMEs)
		if err != nil {
			return nil, err
		}
		payment.ProofPath = &stored.Path
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		if payment.ProofPath != nil {
			_ = s.files.Delete(*payment.ProofPath)
		}
		return nil, repoError(err, "payment not found", "failed to record payment")
	}
	return payment, nil
}

var proofMIMEs = append([]string{"application/pdf"}, storage.ImageMIMEs...)

// List pages payments. Students only see their own.
func (s *PaymentService) List(ctx context.Context, caller *models.SessionUser, query dto.PaymentQuery) ([]models.PaymentDetail, *models.Pagination, error) {
	filter, err := s.filter(caller, query)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list payments")
	}
	return items, models.NewPagination(query.Page, query.PageSize, total), nil
}

// Get returns a payment visible to the caller.
func (s *PaymentService) Get(ctx context.Context, caller *models.SessionUser, id string) (*models.PaymentDetail, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "payment not found", "failed to load payment")
	}
	if !caller.CanAccessStudent(payment.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	return payment, nil
}

// Verify accepts or rejects a pending payment and notifies the student.
func (s *PaymentService) Verify(ctx context.Context, id, verifierID string, req dto.VerifyPaymentRequest) (*models.PaymentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid verification payload")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "payment not found", "failed to load payment")
	}
	if payment.Status != models.PaymentPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "payment has already been reviewed")
	}

	message := fmt.Sprintf("Your payment of %s was %s.", export.FormatCents(payment.AmountCents), req.Status)
	if req.Remarks != nil && *req.Remarks != "" {
		message += " Remarks: " + *req.Remarks
	}
	notification := &models.Notification{UserID: payment.StudentID, Type: models.NotificationPaymentUpdate, Message: message}
	if err := s.repo.Verify(ctx, id, req.Status, req.Remarks, verifierID, notification); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "payment has already been reviewed")
		}
		return nil, appErrors.Internal(err, "failed to verify payment")
	}
	_ = s.cache.Invalidate(ctx, dashboardCachePrefix+"*")

	now := s.now().UTC()
	payment.Status = req.Status
	payment.Remarks = req.Remarks
	payment.VerifiedBy = &verifierID
	payment.VerifiedAt = &now
	return payment, nil
}

// Export renders every payment matching the query as CSV or PDF.
func (s *PaymentService) Export(ctx context.Context, caller *models.SessionUser, query dto.PaymentQuery) (*ExportFile, error) {
	filter, err := s.filter(caller, query)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load payments")
	}

	dataset := export.Dataset{Headers: paymentExportHeaders, Rows: make([]map[string]string, 0, len(items))}
	var total int64
	for _, p := range items {
		total += p.AmountCents
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":      p.CreatedAt.Format("2006-01-02"),
			"ID Number": p.IDNumber,
			"Student":   p.StudentName,
			"Amount":    export.FormatCents(p.AmountCents),
			"Method":    p.Method,
			"Reference": deref(p.ReferenceNumber),
			"Status":    string(p.Status),
		})
	}
	dataset.Totals = map[string]string{"Date": "TOTAL", "Amount": export.FormatCents(total)}

	stamp := s.now().UTC().Format("20060102")
	if query.Format == "pdf" {
		data, err := s.pdf.Render(dataset, "Payments")
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render payments")
		}
		return &ExportFile{Name: "payments-" + stamp + ".pdf", ContentType: "application/pdf", Data: data}, nil
	}
	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render payments")
	}
	return &ExportFile{Name: "payments-" + stamp + ".csv", ContentType: "text/csv", Data: data}, nil
}

// Receipt renders a PDF receipt for a verified payment.
func (s *PaymentService) Receipt(ctx context.Context, caller *models.SessionUser, id string) (*ExportFile, error) {
	payment, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentVerified {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "receipts are only issued for verified payments")
	}

	doc := export.Document{
		Heading:    s.settingOr(ctx, models.SettingSchoolDisplayName, "School"),
		Subheading: s.settingOr(ctx, models.SettingDepartmentName, ""),
		Title:      "Official Receipt",
		Fields: []export.Field{
			{Label: "Receipt No.", Value: payment.ID},
			{Label: "Date", Value: payment.VerifiedAt.Format("January 2, 2006")},
			{Label: "ID Number", Value: payment.IDNumber},
			{Label: "Received from", Value: payment.StudentName},
			{Label: "Amount", Value: export.FormatCents(payment.AmountCents)},
			{Label: "Method", Value: payment.Method},
			{Label: "Reference", Value: deref(payment.ReferenceNumber)},
		},
		Footer: "This receipt was generated electronically and is valid without signature.",
	}
	data, err := s.pdf.RenderDocument(doc)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render receipt")
	}
	return &ExportFile{Name: "receipt-" + payment.ID + ".pdf", ContentType: "application/pdf", Data: data}, nil
}

func (s *PaymentService) filter(caller *models.SessionUser, query dto.PaymentQuery) (models.PaymentFilter, error) {
	if err := s.validator.Struct(query); err != nil {
		return models.PaymentFilter{}, appErrors.Invalid(err, "invalid payment filter")
	}
	filter := models.PaymentFilter{
		StudentID:  query.StudentID,
		SemesterID: query.SemesterID,
		Method:     query.Method,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if caller.Role == models.RoleStudent {
		filter.StudentID = caller.UserID
	}
	if query.Status != "" {
		status := models.PaymentStatus(query.Status)
		filter.Status = &status
	}
	if query.From != "" {
		from, _ := time.Parse("2006-01-02", query.From)
		filter.From = &from
	}
	if query.To != "" {
		to, _ := time.Parse("2006-01-02", query.To)
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}
	return filter, nil
}

func (s *PaymentService) settingOr(ctx context.Context, key, fallback string) string {
	if s.settings == nil {
		return fallback
	}
	setting, err := s.settings.Get(ctx, key)
	if err != nil || setting.Value == "" {
		return fallback
	}
	return setting.Value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
