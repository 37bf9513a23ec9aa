package processamento

import (
	"context"

	"go.uber.org/zap"
)

// BackfillFailure records one date that could not be consolidated.
type BackfillFailure struct {
	DateKey string `json:"data"`
	Reason  string `json:"motivo"`
}

// BackfillReport summarizes a backlog processing run.
type BackfillReport struct {
	Succeeded []string          `json:"processadas"`
	Failed    []BackfillFailure `json:"falhas"`
}

// ProcessBacklog consolidates every requested date in the order given.
// Backfill treats whatever shifts are present as final: half-shift dates
// compute without a confirmation prompt. One date's failure is recorded and
// never aborts the remaining dates.
func (s *Service) ProcessBacklog(ctx context.Context, session *SessionCache, dateKeys []string) *BackfillReport {
	report := &BackfillReport{
		Succeeded: []string{},
		Failed:    []BackfillFailure{},
	}

	for _, dateKey := range dateKeys {
		if _, err := s.consolidateDate(ctx, session, dateKey); err != nil {
			s.logger.Warn("backfill date failed", zap.String("date", dateKey), zap.Error(err))
			report.Failed = append(report.Failed, BackfillFailure{DateKey: dateKey, Reason: err.Error()})
			continue
		}
		report.Succeeded = append(report.Succeeded, dateKey)
	}

	s.logger.Info("backfill finished",
		zap.Int("succeeded", len(report.Succeeded)),
		zap.Int("failed", len(report.Failed)))

	return report
}
