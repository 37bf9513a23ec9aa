package processamento

import (
	"math"
	"time"

	"github.com/dmlopes/processamento/internal/domain/models"
)

// Consolidate merges one date's shift entries into a ProcessamentoResult.
// Pure and deterministic: identical entries and timestamp yield an identical
// result, so re-running for an unchanged date is idempotent.
//
// Only shifts actually present contribute; an absent shift reports zero
// produced kg and zero efficiency. Efficiency is produced/planned*100 with a
// zero guard (planned 0 means efficiency 0, never a division error).
func Consolidate(doc *models.DailyProductionDocument, now time.Time) (*models.ProcessamentoResult, error) {
	if doc == nil || !doc.HasAnyEntries() {
		return nil, ErrNoData
	}

	kg1, cx1, plan1 := sumShift(doc.Shift1)
	kg2, cx2, plan2 := sumShift(doc.Shift2)

	kg1 = round2(kg1)
	kg2 = round2(kg2)
	plan1 = round2(plan1)
	plan2 = round2(plan2)

	// Totals are sums of the rounded per-shift values so that
	// kgTotal == kgTurno1 + kgTurno2 holds exactly.
	kgTotal := round2(kg1 + kg2)
	cxTotal := round2(cx1 + cx2)
	planTotal := round2(plan1 + plan2)

	return &models.ProcessamentoResult{
		EfficiencyShift1:   efficiency(kg1, plan1),
		EfficiencyShift2:   efficiency(kg2, plan2),
		EfficiencyOverall:  efficiency(kgTotal, planTotal),
		PlannedTotalKg:     planTotal,
		BatchCount:         distinctProducts(doc),
		ProducedTotalKg:    kgTotal,
		ProducedTotalBoxes: cxTotal,
		VarianceKg:         round2(kgTotal - planTotal),
		Timestamp:          now,
		ShiftsIncluded:     doc.ShiftsPresent(),
		DateKey:            doc.DateKey,
		ProducedKgShift1:   kg1,
		ProducedKgShift2:   kg2,
		PlannedKgShift1:    plan1,
		PlannedKgShift2:    plan2,
	}, nil
}

func sumShift(entries []models.ShiftEntry) (kg, cx, planned float64) {
	for _, entry := range entries {
		kg += entry.KgProduced
		cx += entry.BoxesProduced
		planned += entry.KgPlanned
	}
	return kg, cx, planned
}

// distinctProducts counts the recipe batches run on the date: one per distinct
// product code across both shifts.
func distinctProducts(doc *models.DailyProductionDocument) int {
	codes := make(map[string]struct{})
	for _, entry := range doc.Shift1 {
		codes[entry.Code] = struct{}{}
	}
	for _, entry := range doc.Shift2 {
		codes[entry.Code] = struct{}{}
	}
	return len(codes)
}

func efficiency(produced, planned float64) float64 {
	if planned <= 0 {
		return 0
	}
	return round1(produced / planned * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
