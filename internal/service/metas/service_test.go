package metas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmlopes/processamento/internal/domain/models"
	"github.com/dmlopes/processamento/internal/repository/mongodb"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListProcessedBetween(ctx context.Context, fromKey, toKey string) ([]models.DailyProductionDocument, error) {
	args := m.Called(ctx, fromKey, toKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyProductionDocument), args.Error(1)
}

func (m *MockStore) GetGoalConfig(ctx context.Context) (*models.MonthlyGoalConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonthlyGoalConfig), args.Error(1)
}

func (m *MockStore) SaveGoalConfig(ctx context.Context, cfg models.MonthlyGoalConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockStore) ListClassificationTargets(ctx context.Context) ([]models.ClassificationTarget, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ClassificationTarget), args.Error(1)
}

func (m *MockStore) UpsertClassificationTarget(ctx context.Context, target models.ClassificationTarget) error {
	args := m.Called(ctx, target)
	return args.Error(0)
}

func processedDay(dateKey string, kgTotal float64, entries []models.ShiftEntry) models.DailyProductionDocument {
	return models.DailyProductionDocument{
		DateKey:   dateKey,
		Processed: models.ProcessadoSim,
		Shift1:    entries,
		Aggregate: &models.ProcessamentoResult{
			ProducedTotalKg: kgTotal,
			DateKey:         dateKey,
		},
	}
}

func TestProjectMonthlyProgress(t *testing.T) {
	store := new(MockStore)
	store.On("GetGoalConfig", mock.Anything).
		Return(&models.MonthlyGoalConfig{MinimumMonthlyTargetKg: 10000, WorkingDaysInMonth: 20}, nil)
	store.On("ListProcessedBetween", mock.Anything, "2024-01-01", "2024-01-31").
		Return([]models.DailyProductionDocument{
			processedDay("2024-01-10", 3000, []models.ShiftEntry{{Code: "1001", KgProduced: 3000}}),
			processedDay("2024-01-11", 2000, []models.ShiftEntry{{Code: "3001", KgProduced: 2000}}),
		}, nil)
	store.On("ListClassificationTargets", mock.Anything).Return([]models.ClassificationTarget{}, nil)

	svc := NewService(store, nil)
	projection, err := svc.Project(context.Background(), "2024-01")
	require.NoError(t, err)

	assert.Equal(t, 5000.0, projection.ProducedKg)
	assert.Equal(t, 50.0, projection.ProgressPct)
	assert.Equal(t, 5000.0, projection.RemainingKg)
	assert.Equal(t, 18, projection.WorkingDaysRemaining)
	require.Len(t, projection.PerClassification, len(models.Classifications()))
}

func TestProjectProportionalSplitByHistory(t *testing.T) {
	store := new(MockStore)
	store.On("GetGoalConfig", mock.Anything).
		Return(&models.MonthlyGoalConfig{MinimumMonthlyTargetKg: 10000, WorkingDaysInMonth: 22}, nil)
	store.On("ListProcessedBetween", mock.Anything, "2024-03-01", "2024-03-31").
		Return([]models.DailyProductionDocument{
			processedDay("2024-03-05", 1000, []models.ShiftEntry{
				{Code: "1001", KgProduced: 600},
				{Code: "3001", KgProduced: 400},
			}),
		}, nil)
	store.On("ListClassificationTargets", mock.Anything).Return([]models.ClassificationTarget{}, nil)

	svc := NewService(store, nil)
	projection, err := svc.Project(context.Background(), "2024-03")
	require.NoError(t, err)

	byClass := make(map[string]models.ClassificationGoalProgress)
	for _, row := range projection.PerClassification {
		byClass[row.Classification] = row
	}

	assert.Equal(t, 6000.0, byClass[models.ClassInNatura].TargetKg)
	assert.Equal(t, 600.0, byClass[models.ClassInNatura].ActualKg)
	assert.Equal(t, 10.0, byClass[models.ClassInNatura].ProgressPct)

	assert.Equal(t, 4000.0, byClass[models.ClassCongelados].TargetKg)
	assert.Equal(t, 400.0, byClass[models.ClassCongelados].ActualKg)

	// No history for this classification: proportional share is zero, and the
	// zero target yields zero progress rather than a division error.
	assert.Equal(t, 0.0, byClass[models.ClassEmbutidos].TargetKg)
	assert.Equal(t, 0.0, byClass[models.ClassEmbutidos].ProgressPct)
}

func TestProjectDefaultDistributionWithoutHistory(t *testing.T) {
	store := new(MockStore)
	store.On("GetGoalConfig", mock.Anything).
		Return(&models.MonthlyGoalConfig{MinimumMonthlyTargetKg: 10000, WorkingDaysInMonth: 20}, nil)
	store.On("ListProcessedBetween", mock.Anything, "2024-02-01", "2024-02-29").
		Return([]models.DailyProductionDocument{}, nil)
	store.On("ListClassificationTargets", mock.Anything).Return([]models.ClassificationTarget{}, nil)

	svc := NewService(store, nil)
	projection, err := svc.Project(context.Background(), "2024-02")
	require.NoError(t, err)

	assert.Equal(t, 0.0, projection.ProducedKg)
	assert.Equal(t, 0.0, projection.ProgressPct)
	assert.Equal(t, 10000.0, projection.RemainingKg)
	assert.Equal(t, 20, projection.WorkingDaysRemaining)

	shares := models.DefaultTargetShares()
	for _, row := range projection.PerClassification {
		assert.Equal(t, 10000*shares[row.Classification], row.TargetKg, row.Classification)
		assert.Equal(t, 0.0, row.ActualKg)
	}
}

func TestProjectOverrideWinsAndIsLocal(t *testing.T) {
	store := new(MockStore)
	store.On("GetGoalConfig", mock.Anything).
		Return(&models.MonthlyGoalConfig{MinimumMonthlyTargetKg: 10000, WorkingDaysInMonth: 20}, nil)
	store.On("ListProcessedBetween", mock.Anything, "2024-03-01", "2024-03-31").
		Return([]models.DailyProductionDocument{
			processedDay("2024-03-05", 1000, []models.ShiftEntry{
				{Code: "1001", KgProduced: 600},
				{Code: "3001", KgProduced: 400},
			}),
		}, nil)
	store.On("ListClassificationTargets", mock.Anything).Return([]models.ClassificationTarget{
		{Classification: models.ClassInNatura, TargetKg: 2500},
	}, nil)

	svc := NewService(store, nil)
	projection, err := svc.Project(context.Background(), "2024-03")
	require.NoError(t, err)

	byClass := make(map[string]models.ClassificationGoalProgress)
	for _, row := range projection.PerClassification {
		byClass[row.Classification] = row
	}

	assert.Equal(t, 2500.0, byClass[models.ClassInNatura].TargetKg)
	assert.Equal(t, 24.0, byClass[models.ClassInNatura].ProgressPct)
	// The other classification keeps its derived share untouched.
	assert.Equal(t, 4000.0, byClass[models.ClassCongelados].TargetKg)
}

func TestProjectMissingConfigReportsZeroTarget(t *testing.T) {
	store := new(MockStore)
	store.On("GetGoalConfig", mock.Anything).Return(nil, mongodb.ErrNotFound)
	store.On("ListProcessedBetween", mock.Anything, "2024-01-01", "2024-01-31").
		Return([]models.DailyProductionDocument{
			processedDay("2024-01-10", 500, []models.ShiftEntry{{Code: "1001", KgProduced: 500}}),
		}, nil)
	store.On("ListClassificationTargets", mock.Anything).Return([]models.ClassificationTarget{}, nil)

	svc := NewService(store, nil)
	projection, err := svc.Project(context.Background(), "2024-01")
	require.NoError(t, err)

	assert.Equal(t, 0.0, projection.TargetKg)
	assert.Equal(t, 0.0, projection.ProgressPct)
	assert.Equal(t, 0.0, projection.RemainingKg)
	assert.Equal(t, 500.0, projection.ProducedKg)
}

func TestProjectInvalidPeriod(t *testing.T) {
	svc := NewService(new(MockStore), nil)
	_, err := svc.Project(context.Background(), "15-01-2024")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestSetGoalConfigValidation(t *testing.T) {
	svc := NewService(new(MockStore), nil)
	err := svc.SetGoalConfig(context.Background(), models.MonthlyGoalConfig{MinimumMonthlyTargetKg: -1})
	assert.Error(t, err)
}

func TestSetClassificationTarget(t *testing.T) {
	store := new(MockStore)
	target := models.ClassificationTarget{Classification: models.ClassCongelados, TargetKg: 1234.5}
	store.On("UpsertClassificationTarget", mock.Anything, target).Return(nil)

	svc := NewService(store, nil)
	require.NoError(t, svc.SetClassificationTarget(context.Background(), target))
	store.AssertExpectations(t)

	assert.Error(t, svc.SetClassificationTarget(context.Background(), models.ClassificationTarget{TargetKg: 10}))
}

func TestClassifyProduct(t *testing.T) {
	assert.Equal(t, models.ClassInNatura, models.ClassifyProduct("1001"))
	assert.Equal(t, models.ClassResfriados, models.ClassifyProduct("2450"))
	assert.Equal(t, models.ClassCongelados, models.ClassifyProduct("3999"))
	assert.Equal(t, models.ClassEmbutidos, models.ClassifyProduct("4010"))
	assert.Equal(t, models.ClassOutros, models.ClassifyProduct("9001"))
	assert.Equal(t, models.ClassOutros, models.ClassifyProduct(""))
}
