package models

// Product classification names used for goal tracking.
const (
	ClassInNatura   = "IN NATURA"
	ClassResfriados = "RESFRIADOS"
	ClassCongelados = "CONGELADOS"
	ClassEmbutidos  = "EMBUTIDOS"
	ClassOutros     = "OUTROS"
)

// Classifications returns all classifications in reporting order.
func Classifications() []string {
	return []string{ClassInNatura, ClassResfriados, ClassCongelados, ClassEmbutidos, ClassOutros}
}

// ClassifyProduct maps a product code to its classification. Codes are
// allocated by family: the leading digit identifies the product line.
func ClassifyProduct(code string) string {
	if code == "" {
		return ClassOutros
	}
	switch code[0] {
	case '1':
		return ClassInNatura
	case '2':
		return ClassResfriados
	case '3':
		return ClassCongelados
	case '4':
		return ClassEmbutidos
	}
	return ClassOutros
}

// DefaultTargetShares is the fallback distribution of the monthly target per
// classification, applied when the period has no production history to derive
// a proportional split from.
func DefaultTargetShares() map[string]float64 {
	return map[string]float64{
		ClassInNatura:   0.35,
		ClassResfriados: 0.25,
		ClassCongelados: 0.25,
		ClassEmbutidos:  0.10,
		ClassOutros:     0.05,
	}
}

// MonthlyGoalConfig is the process-wide goal configuration, edited rarely
// through the settings form.
type MonthlyGoalConfig struct {
	MinimumMonthlyTargetKg float64 `bson:"meta_minima_mensal" json:"meta_minima_mensal"`
	WorkingDaysInMonth     int     `bson:"dias_uteis_mes" json:"dias_uteis_mes"`
}

// ClassificationTarget is a persisted per-classification target override. An
// override is local: saving one never re-derives the other classifications'
// shares.
type ClassificationTarget struct {
	Classification string  `bson:"_id" json:"classificacao"`
	TargetKg       float64 `bson:"meta_kg" json:"meta_kg"`
}

// ClassificationGoalProgress is the derived per-classification progress row.
// Recomputed on every read, never persisted as source of truth.
type ClassificationGoalProgress struct {
	Classification string  `json:"classificacao"`
	TargetKg       float64 `json:"meta_kg"`
	ActualKg       float64 `json:"kg_produzido"`
	ProgressPct    float64 `json:"progresso_pct"`
}

// GoalProjection is the monthly goal progress snapshot served by the Metas
// module.
type GoalProjection struct {
	Period               string                       `json:"periodo"`
	TargetKg             float64                      `json:"meta_minima_mensal"`
	ProducedKg           float64                      `json:"kg_produzido"`
	ProgressPct          float64                      `json:"progresso_pct"`
	RemainingKg          float64                      `json:"kg_restante"`
	WorkingDaysRemaining int                          `json:"dias_uteis_restantes"`
	PerClassification    []ClassificationGoalProgress `json:"classificacoes"`
}
