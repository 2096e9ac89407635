package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/internal/service"
	appErrors "github.com/lyceo/charge-api/pkg/errors"
)

type assignmentServiceMock struct {
	listResp   []models.Assignment
	listErr    error
	createResp *models.Assignment
	createRep  *models.ConflictReport
	createErr  error
	checkResp  *models.ConflictReport
	checkErr   error
	dailyResp  *models.DailySummary
	weeklyResp *models.WeeklySummary
	statsResp  *models.WorkloadStats

	lastFilter  models.AssignmentFilter
	lastClassID string
	lastDate    time.Time
	createCalls int
}

func (m *assignmentServiceMock) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	m.lastFilter = filter
	return m.listResp, m.listErr
}

func (m *assignmentServiceMock) Create(ctx context.Context, req service.CreateAssignmentRequest) (*models.Assignment, *models.ConflictReport, error) {
	m.createCalls++
	return m.createResp, m.createRep, m.createErr
}

func (m *assignmentServiceMock) SetDone(ctx context.Context, id string, done bool) error {
	return nil
}

func (m *assignmentServiceMock) CheckConflicts(ctx context.Context, req service.CreateAssignmentRequest) (*models.ConflictReport, error) {
	return m.checkResp, m.checkErr
}

func (m *assignmentServiceMock) Daily(ctx context.Context, classID string, date time.Time) (*models.DailySummary, error) {
	m.lastClassID = classID
	m.lastDate = date
	return m.dailyResp, nil
}

func (m *assignmentServiceMock) Weekly(ctx context.Context, classID string, date time.Time) (*models.WeeklySummary, error) {
	m.lastClassID = classID
	m.lastDate = date
	return m.weeklyResp, nil
}

func (m *assignmentServiceMock) Stats(ctx context.Context, classID string, start, end time.Time) (*models.WorkloadStats, error) {
	return m.statsResp, nil
}

func TestWorkloadHandlerDaily(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{
		dailyResp: &models.DailySummary{Date: "2025-01-10", Score: 6, Status: models.LoadHeavy},
	}
	handler := NewWorkloadHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/workload/daily?date=2025-01-10&classId=2A", nil)
	c.Request = req

	handler.Daily(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2A", mockSvc.lastClassID)
	assert.Equal(t, "2025-01-10", mockSvc.lastDate.Format("2006-01-02"))
}

func TestWorkloadHandlerDailyBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWorkloadHandler(&assignmentServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/workload/daily?date=10-01-2025", nil)
	c.Request = req

	handler.Daily(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkloadHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{
		createResp: &models.Assignment{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-10"},
		createRep:  &models.ConflictReport{CanAdd: true},
	}
	handler := NewWorkloadHandler(mockSvc)

	payload, _ := json.Marshal(service.CreateAssignmentRequest{Kind: "test", DueDate: "2025-01-10", ClassID: "2A"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.CreateAssignment(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, mockSvc.createCalls)

	var envelope struct {
		Data struct {
			Assignment models.Assignment     `json:"assignment"`
			Conflicts  models.ConflictReport `json:"conflicts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "a1", envelope.Data.Assignment.ID)
	assert.True(t, envelope.Data.Conflicts.CanAdd)
}

func TestWorkloadHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWorkloadHandler(&assignmentServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewBufferString(`{"kind":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.CreateAssignment(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkloadHandlerCreateServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{createErr: appErrors.ErrValidation}
	handler := NewWorkloadHandler(mockSvc)

	payload, _ := json.Marshal(service.CreateAssignmentRequest{Kind: "essay", DueDate: "2025-01-10"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.CreateAssignment(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkloadHandlerStatsRequiresBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWorkloadHandler(&assignmentServiceMock{statsResp: &models.WorkloadStats{}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/workload/stats?start=2025-01-06", nil)
	c.Request = req

	handler.Stats(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
