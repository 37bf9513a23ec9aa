package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmlopes/processamento/internal/domain/models"
	"github.com/dmlopes/processamento/internal/service/processamento"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetDailyDocument(ctx context.Context, dateKey string) (*models.DailyProductionDocument, error) {
	args := m.Called(ctx, dateKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyProductionDocument), args.Error(1)
}

func (m *MockStore) ListUnprocessed(ctx context.Context) ([]models.DailyProductionDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyProductionDocument), args.Error(1)
}

func (m *MockStore) SaveAggregate(ctx context.Context, dateKey string, result *models.ProcessamentoResult, expectedVersion int64) error {
	args := m.Called(ctx, dateKey, result, expectedVersion)
	return args.Error(0)
}

func newTestRouter(store processamento.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := processamento.NewService(store, nil)
	handler := NewProcessamentoHandler(svc, nil, time.UTC, nil)

	r := gin.New()
	r.POST("/api/processamento/propose", handler.Propose)
	r.POST("/api/processamento/executar", handler.Execute)
	r.POST("/api/processamento/backfill", handler.Backfill)
	return r
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProposeBlockedByBacklogHTTP(t *testing.T) {
	store := new(MockStore)
	store.On("ListUnprocessed", mock.Anything).Return([]models.DailyProductionDocument{
		{
			DateKey:   "2024-01-10",
			Processed: models.ProcessadoNao,
			Shift1:    []models.ShiftEntry{{Code: "P1", KgProduced: 10}},
		},
	}, nil)

	w := perform(newTestRouter(store), http.MethodPost, "/api/processamento/propose", `{"data":"2024-01-15"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bloqueado":true`)
	assert.Contains(t, w.Body.String(), "2024-01-10")
}

func TestExecuteConfirmationRequiredHTTP(t *testing.T) {
	store := new(MockStore)
	store.On("ListUnprocessed", mock.Anything).Return([]models.DailyProductionDocument{}, nil)
	store.On("GetDailyDocument", mock.Anything, "2024-01-15").Return(&models.DailyProductionDocument{
		DateKey:   "2024-01-15",
		Processed: models.ProcessadoNao,
		Shift1:    []models.ShiftEntry{{Code: "P1", KgProduced: 100, KgPlanned: 80}},
	}, nil)

	w := perform(newTestRouter(store), http.MethodPost, "/api/processamento/executar",
		`{"data":"2024-01-15","confirmado":false}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), models.Shift2Label)
}

func TestExecuteConfirmedHTTP(t *testing.T) {
	store := new(MockStore)
	store.On("ListUnprocessed", mock.Anything).Return([]models.DailyProductionDocument{}, nil)
	store.On("GetDailyDocument", mock.Anything, "2024-01-15").Return(&models.DailyProductionDocument{
		DateKey:   "2024-01-15",
		Processed: models.ProcessadoNao,
		Version:   2,
		Shift1:    []models.ShiftEntry{{Code: "P1", KgProduced: 100, KgPlanned: 80}},
	}, nil)
	store.On("SaveAggregate", mock.Anything, "2024-01-15", mock.Anything, int64(2)).Return(nil)

	w := perform(newTestRouter(store), http.MethodPost, "/api/processamento/executar",
		`{"data":"2024-01-15","confirmado":true}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ctp1":125`)
	assert.Contains(t, w.Body.String(), `"kgTotal":100`)
	store.AssertExpectations(t)
}

func TestExecuteNoDataHTTP(t *testing.T) {
	store := new(MockStore)
	store.On("ListUnprocessed", mock.Anything).Return([]models.DailyProductionDocument{}, nil)
	store.On("GetDailyDocument", mock.Anything, "2024-01-15").Return(&models.DailyProductionDocument{
		DateKey:   "2024-01-15",
		Processed: models.ProcessadoNao,
	}, nil)

	w := perform(newTestRouter(store), http.MethodPost, "/api/processamento/executar",
		`{"data":"2024-01-15"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExecuteRejectsBadDateHTTP(t *testing.T) {
	w := perform(newTestRouter(new(MockStore)), http.MethodPost, "/api/processamento/executar",
		`{"data":"15/01/2024"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBackfillScansWhenNoDatesGivenHTTP(t *testing.T) {
	store := new(MockStore)
	store.On("ListUnprocessed", mock.Anything).Return([]models.DailyProductionDocument{
		{
			DateKey:   "2024-01-10",
			Processed: models.ProcessadoNao,
			Version:   1,
			Shift1:    []models.ShiftEntry{{Code: "P1", KgProduced: 10, KgPlanned: 10}},
		},
	}, nil)
	store.On("GetDailyDocument", mock.Anything, "2024-01-10").Return(&models.DailyProductionDocument{
		DateKey:   "2024-01-10",
		Processed: models.ProcessadoNao,
		Version:   1,
		Shift1:    []models.ShiftEntry{{Code: "P1", KgProduced: 10, KgPlanned: 10}},
	}, nil)
	store.On("SaveAggregate", mock.Anything, "2024-01-10", mock.Anything, int64(1)).Return(nil)

	w := perform(newTestRouter(store), http.MethodPost, "/api/processamento/backfill", `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"processadas":["2024-01-10"]`)
	assert.Contains(t, w.Body.String(), `"falhas":[]`)
}
