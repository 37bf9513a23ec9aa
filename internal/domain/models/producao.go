package models

// Shift numbers as exposed on the API surface.
const (
	Shift1 = 1
	Shift2 = 2
)

// Values persisted in the "processado" field of a daily document.
const (
	ProcessadoSim = "sim"
	ProcessadoNao = "não"
)

// Display labels recorded in turnosProcessados.
const (
	Shift1Label = "1 Turno"
	Shift2Label = "2 Turno"
)

// maxProductTextLen caps the texto_breve display label.
const maxProductTextLen = 30

// ShiftEntry is one planned/produced line for a product within a shift.
// Quantities are stored as plain numerics; Brazilian comma formatting is an
// input/output concern handled at the HTTP boundary.
type ShiftEntry struct {
	Code          string  `bson:"codigo" json:"codigo"`
	ProductText   string  `bson:"texto_breve" json:"texto_breve"`
	KgProduced    float64 `bson:"kg" json:"kg"`
	BoxesProduced float64 `bson:"cx" json:"cx"`
	KgPlanned     float64 `bson:"planejamento" json:"planejamento"`
}

// TruncateProductText enforces the texto_breve length limit on write.
func TruncateProductText(text string) string {
	runes := []rune(text)
	if len(runes) <= maxProductTextLen {
		return text
	}
	return string(runes[:maxProductTextLen])
}

// DailyProductionDocument holds one calendar date's raw shift entries plus the
// derived aggregate once the date has been consolidated. The document key is
// the dateKey in YYYY-MM-DD form. Aggregate is non-nil iff Processed is "sim".
type DailyProductionDocument struct {
	DateKey   string               `bson:"_id" json:"data"`
	Shift1    []ShiftEntry         `bson:"1_turno,omitempty" json:"1_turno,omitempty"`
	Shift2    []ShiftEntry         `bson:"2_turno,omitempty" json:"2_turno,omitempty"`
	Processed string               `bson:"processado" json:"processado"`
	Aggregate *ProcessamentoResult `bson:"Processamento,omitempty" json:"Processamento,omitempty"`
	Version   int64                `bson:"versao" json:"-"`
}

// HasShift reports whether the given shift carries at least one entry.
func (d *DailyProductionDocument) HasShift(shift int) bool {
	switch shift {
	case Shift1:
		return len(d.Shift1) > 0
	case Shift2:
		return len(d.Shift2) > 0
	}
	return false
}

// HasAnyEntries reports whether either shift carries entries.
func (d *DailyProductionDocument) HasAnyEntries() bool {
	return d.HasShift(Shift1) || d.HasShift(Shift2)
}

// ShiftsPresent returns the display labels of the shifts that carry entries.
func (d *DailyProductionDocument) ShiftsPresent() []string {
	var labels []string
	if d.HasShift(Shift1) {
		labels = append(labels, Shift1Label)
	}
	if d.HasShift(Shift2) {
		labels = append(labels, Shift2Label)
	}
	return labels
}
