package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type fakeDashboardSrv struct {
	adminResp      *dto.AdminDashboard
	adminErr       error
	adminHit       bool
	studentResp    *dto.StudentDashboard
	accountingResp *dto.AccountingDashboard
	lastSemester   string
	lastStudent    string
}

func (f *fakeDashboardSrv) Admin(_ context.Context, semesterID string) (*dto.AdminDashboard, bool, error) {
	f.lastSemester = semesterID
	return f.adminResp, f.adminHit, f.adminErr
}

func (f *fakeDashboardSrv) Student(_ context.Context, caller *models.SessionUser, semesterID string) (*dto.StudentDashboard, bool, error) {
	f.lastStudent = caller.UserID
	f.lastSemester = semesterID
	return f.studentResp, false, nil
}

func (f *fakeDashboardSrv) Accounting(_ context.Context, semesterID string) (*dto.AccountingDashboard, bool, error) {
	f.lastSemester = semesterID
	return f.accountingResp, false, nil
}

func TestDashboardHandlerAdminSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{
		adminResp: &dto.AdminDashboard{SemesterID: "sem-1", TotalStudents: 42},
		adminHit:  true,
	}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/admin?semester_id=sem-1", nil)

	handler.Admin(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "sem-1", envelope.Data["semester_id"])
	assert.Equal(t, float64(42), envelope.Data["total_students"])
	assert.Equal(t, "sem-1", service.lastSemester)
}

func TestDashboardHandlerAdminError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{adminErr: appErrors.ErrInternal})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil)

	handler.Admin(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDashboardHandlerStudentRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/student", nil)

	handler.Student(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerStudentSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{studentResp: &dto.StudentDashboard{SemesterID: "sem-2", EnrolledSubjects: 6}}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/student", nil)
	c.Set(middleware.ContextUserKey, &models.SessionUser{UserID: "stu-1", Role: models.RoleStudent})

	handler.Student(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stu-1", service.lastStudent)
	assert.Empty(t, service.lastSemester)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(6), envelope.Data["enrolled_subjects"])
}

func TestDashboardHandlerAccounting(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{accountingResp: &dto.AccountingDashboard{SemesterID: "sem-3", OutstandingCents: 5000}}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/accounting?semester_id=%20sem-3%20", nil)

	handler.Accounting(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sem-3", service.lastSemester)
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error map[string]interface{} `json:"error"`
}
