package metas

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/dmlopes/processamento/internal/domain/models"
	"github.com/dmlopes/processamento/internal/repository/mongodb"
)

const (
	dateLayout   = "2006-01-02"
	periodLayout = "2006-01"
)

// ErrInvalidPeriod indicates the period is not in YYYY-MM form.
var ErrInvalidPeriod = errors.New("invalid period, expected YYYY-MM")

// Store defines the read operations the goal projection needs plus the
// settings-form writes. Satisfied by *mongodb.Repository.
type Store interface {
	ListProcessedBetween(ctx context.Context, fromKey, toKey string) ([]models.DailyProductionDocument, error)
	GetGoalConfig(ctx context.Context) (*models.MonthlyGoalConfig, error)
	SaveGoalConfig(ctx context.Context, cfg models.MonthlyGoalConfig) error
	ListClassificationTargets(ctx context.Context) ([]models.ClassificationTarget, error)
	UpsertClassificationTarget(ctx context.Context, target models.ClassificationTarget) error
}

// Service computes goal progress from consolidated production data. It only
// reads production documents; aggregates are owned by the consolidation
// service.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new goal tracking service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Project computes monthly goal progress for a period in YYYY-MM form:
// cumulative production against the configured target, remaining volume and
// working days, plus a per-classification breakdown.
func (s *Service) Project(ctx context.Context, period string) (*models.GoalProjection, error) {
	start, err := time.Parse(periodLayout, period)
	if err != nil {
		return nil, ErrInvalidPeriod
	}
	fromKey := start.Format(dateLayout)
	toKey := start.AddDate(0, 1, -1).Format(dateLayout)

	cfg, err := s.store.GetGoalConfig(ctx)
	if err != nil {
		if !errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("load goal config: %w", err)
		}
		// No configuration yet: report zero targets rather than failing the page.
		cfg = &models.MonthlyGoalConfig{}
		s.logger.Warn("goal config missing, projecting against zero target")
	}

	docs, err := s.store.ListProcessedBetween(ctx, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("load consolidated documents: %w", err)
	}

	var producedSum float64
	actualByClass := make(map[string]float64)
	for i := range docs {
		doc := &docs[i]
		if doc.Aggregate == nil {
			continue
		}
		producedSum += doc.Aggregate.ProducedTotalKg
		accumulateByClassification(actualByClass, doc.Shift1)
		accumulateByClassification(actualByClass, doc.Shift2)
	}
	producedSum = round2(producedSum)

	overrides, err := s.store.ListClassificationTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load classification targets: %w", err)
	}
	overrideByClass := make(map[string]float64, len(overrides))
	for _, o := range overrides {
		overrideByClass[o.Classification] = o.TargetKg
	}

	projection := &models.GoalProjection{
		Period:               period,
		TargetKg:             cfg.MinimumMonthlyTargetKg,
		ProducedKg:           producedSum,
		ProgressPct:          progressPct(producedSum, cfg.MinimumMonthlyTargetKg),
		RemainingKg:          round2(math.Max(0, cfg.MinimumMonthlyTargetKg-producedSum)),
		WorkingDaysRemaining: maxInt(0, cfg.WorkingDaysInMonth-len(docs)),
	}

	for _, class := range models.Classifications() {
		actual := round2(actualByClass[class])
		target := classificationTarget(class, cfg.MinimumMonthlyTargetKg, actual, producedSum, overrideByClass)
		projection.PerClassification = append(projection.PerClassification, models.ClassificationGoalProgress{
			Classification: class,
			TargetKg:       target,
			ActualKg:       actual,
			ProgressPct:    progressPct(actual, target),
		})
	}

	return projection, nil
}

// SetGoalConfig persists the monthly goal settings.
func (s *Service) SetGoalConfig(ctx context.Context, cfg models.MonthlyGoalConfig) error {
	if cfg.MinimumMonthlyTargetKg < 0 {
		return errors.New("meta_minima_mensal must not be negative")
	}
	if cfg.WorkingDaysInMonth < 0 {
		return errors.New("dias_uteis_mes must not be negative")
	}
	if err := s.store.SaveGoalConfig(ctx, cfg); err != nil {
		return fmt.Errorf("save goal config: %w", err)
	}
	return nil
}

// SetClassificationTarget persists a local override for one classification.
// Overrides never re-derive the other classifications' shares.
func (s *Service) SetClassificationTarget(ctx context.Context, target models.ClassificationTarget) error {
	if target.Classification == "" {
		return errors.New("classificacao must be provided")
	}
	if target.TargetKg < 0 {
		return errors.New("meta_kg must not be negative")
	}
	if err := s.store.UpsertClassificationTarget(ctx, target); err != nil {
		return fmt.Errorf("save classification target: %w", err)
	}
	return nil
}

// classificationTarget resolves one classification's target: a persisted
// override wins; otherwise the monthly target is split proportionally to the
// period's production share; with no history at all the fixed default
// distribution applies.
func classificationTarget(class string, monthlyTarget, actual, producedSum float64, overrides map[string]float64) float64 {
	if target, ok := overrides[class]; ok {
		return target
	}
	if producedSum > 0 {
		return round2(monthlyTarget * (actual / producedSum))
	}
	return round2(monthlyTarget * models.DefaultTargetShares()[class])
}

func accumulateByClassification(acc map[string]float64, entries []models.ShiftEntry) {
	for _, entry := range entries {
		acc[models.ClassifyProduct(entry.Code)] += entry.KgProduced
	}
}

func progressPct(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return round1(actual / target * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
