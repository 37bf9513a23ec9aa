package processamento

import (
	"context"
	"fmt"
)

// BacklogItem identifies one unconsolidated historical date.
type BacklogItem struct {
	DateKey       string   `json:"data"`
	ShiftsPresent []string `json:"turnos"`
}

// ScanBacklog lists unprocessed dates that carry production entries, in date
// order. excludeDateKey is never part of the result: the date currently being
// worked on is not its own backlog. Empty documents are skipped, there is
// nothing to consolidate in them.
func (s *Service) ScanBacklog(ctx context.Context, excludeDateKey string) ([]BacklogItem, error) {
	docs, err := s.store.ListUnprocessed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed dates: %w", err)
	}

	var items []BacklogItem
	for i := range docs {
		doc := &docs[i]
		if doc.DateKey == excludeDateKey {
			continue
		}
		if !doc.HasAnyEntries() {
			continue
		}
		items = append(items, BacklogItem{
			DateKey:       doc.DateKey,
			ShiftsPresent: doc.ShiftsPresent(),
		})
	}
	return items, nil
}
