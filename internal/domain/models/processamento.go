package models

import "time"

// ProcessamentoResult is the consolidated aggregate for one production date.
// It is derived data, owned exclusively by the consolidation service, and is
// overwritten in full on every run for the date. Field names mirror the stored
// document shape (ctp = produced over planned efficiency percentage).
type ProcessamentoResult struct {
	EfficiencyShift1   float64   `bson:"ctp1" json:"ctp1"`
	EfficiencyShift2   float64   `bson:"ctp2" json:"ctp2"`
	EfficiencyOverall  float64   `bson:"ctptd" json:"ctptd"`
	PlannedTotalKg     float64   `bson:"planoDiario" json:"planoDiario"`
	BatchCount         int       `bson:"batchReceita" json:"batchReceita"`
	ProducedTotalKg    float64   `bson:"kgTotal" json:"kgTotal"`
	ProducedTotalBoxes float64   `bson:"cxTotal" json:"cxTotal"`
	VarianceKg         float64   `bson:"diferencaPR" json:"diferencaPR"`
	Timestamp          time.Time `bson:"timestamp" json:"timestamp"`
	ShiftsIncluded     []string  `bson:"turnosProcessados" json:"turnosProcessados"`
	DateKey            string    `bson:"dataProcessamento" json:"dataProcessamento"`
	ProducedKgShift1   float64   `bson:"kgTurno1" json:"kgTurno1"`
	ProducedKgShift2   float64   `bson:"kgTurno2" json:"kgTurno2"`
	PlannedKgShift1    float64   `bson:"planejadoTurno1" json:"planejadoTurno1"`
	PlannedKgShift2    float64   `bson:"planejadoTurno2" json:"planejadoTurno2"`
}
