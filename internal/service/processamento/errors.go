package processamento

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData indicates neither shift has entries for the requested date.
// Terminal: there is nothing to consolidate and no retry will change that.
var ErrNoData = errors.New("no production data for this date")

// ConfirmationRequiredError signals that exactly one shift has entries. The
// day may be half-entered, so consolidation waits for an explicit operator
// confirmation naming the missing shift.
type ConfirmationRequiredError struct {
	DateKey      string
	MissingShift string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("date %s is missing %s: confirmation required before consolidating", e.DateKey, e.MissingShift)
}

// BacklogPendingError blocks current-date consolidation while unprocessed
// historical dates exist. The backlog must be backfilled first.
type BacklogPendingError struct {
	Dates []string
}

func (e *BacklogPendingError) Error() string {
	return fmt.Sprintf("unprocessed dates pending backfill: %s", strings.Join(e.Dates, ", "))
}
