package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type fakePaymentSrv struct {
	created    dto.CreatePaymentRequest
	proof      *multipart.FileHeader
	exportQ    dto.PaymentQuery
	receiptErr error
}

func (f *fakePaymentSrv) Create(_ context.Context, _ *models.SessionUser, req dto.CreatePaymentRequest, proof *multipart.FileHeader) (*models.Payment, error) {
	f.created = req
	f.proof = proof
	return &models.Payment{ID: "pay-1"}, nil
}

func (f *fakePaymentSrv) List(context.Context, *models.SessionUser, dto.PaymentQuery) ([]models.PaymentDetail, *models.Pagination, error) {
	return nil, nil, nil
}

func (f *fakePaymentSrv) Get(context.Context, *models.SessionUser, string) (*models.PaymentDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
}

func (f *fakePaymentSrv) Verify(context.Context, string, string, dto.VerifyPaymentRequest) (*models.PaymentDetail, error) {
	return &models.PaymentDetail{}, nil
}

func (f *fakePaymentSrv) Export(_ context.Context, _ *models.SessionUser, query dto.PaymentQuery) (*service.ExportFile, error) {
	f.exportQ = query
	return &service.ExportFile{Name: "payments-20260201.csv", ContentType: "text/csv", Data: []byte("Date\n")}, nil
}

func (f *fakePaymentSrv) Receipt(context.Context, *models.SessionUser, string) (*service.ExportFile, error) {
	return nil, f.receiptErr
}

func staffContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.SessionUser{UserID: "acct-1", Role: models.RoleAccounting})
	return c, rec
}

func TestPaymentHandlerCreateWithoutProof(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePaymentSrv{}
	handler := NewPaymentHandler(srv)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("student_id", "stu-1"))
	require.NoError(t, writer.WriteField("semester_id", "sem-1"))
	require.NoError(t, writer.WriteField("amount_cents", "150000"))
	require.NoError(t, writer.WriteField("method", "cash"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/payments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c, rec := staffContext(req)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(150000), srv.created.AmountCents)
	assert.Equal(t, "stu-1", srv.created.StudentID)
	assert.Nil(t, srv.proof)
}

func TestPaymentHandlerCreateWithProof(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePaymentSrv{}
	handler := NewPaymentHandler(srv)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("semester_id", "sem-1"))
	require.NoError(t, writer.WriteField("amount_cents", "500"))
	require.NoError(t, writer.WriteField("method", "gcash"))
	part, err := writer.CreateFormFile("proof", "receipt.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/payments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c, rec := staffContext(req)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, srv.proof)
	assert.Equal(t, "receipt.png", srv.proof.Filename)
}

func TestPaymentHandlerExportWritesAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePaymentSrv{}
	handler := NewPaymentHandler(srv)

	c, rec := staffContext(httptest.NewRequest(http.MethodGet, "/payments/export?format=csv&status=verified", nil))
	handler.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.exportQ.Format)
	assert.Equal(t, "verified", srv.exportQ.Status)
	assert.Equal(t, `attachment; filename="payments-20260201.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Date\n", rec.Body.String())
}

func TestPaymentHandlerReceiptNotVerified(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPaymentHandler(&fakePaymentSrv{receiptErr: appErrors.Clone(appErrors.ErrPreconditionFailed, "payment is not verified")})

	c, rec := staffContext(httptest.NewRequest(http.MethodGet, "/payments/pay-1/receipt", nil))
	c.Params = gin.Params{{Key: "id", Value: "pay-1"}}
	handler.Receipt(c)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestPaymentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPaymentHandler(&fakePaymentSrv{})

	c, rec := staffContext(httptest.NewRequest(http.MethodGet, "/payments/missing", nil))
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
