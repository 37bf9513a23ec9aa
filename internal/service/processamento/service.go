package processamento

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmlopes/processamento/internal/domain/models"
)

// Store defines the persistence operations the consolidation service needs.
// Satisfied by *mongodb.Repository.
type Store interface {
	GetDailyDocument(ctx context.Context, dateKey string) (*models.DailyProductionDocument, error)
	ListUnprocessed(ctx context.Context) ([]models.DailyProductionDocument, error)
	SaveAggregate(ctx context.Context, dateKey string, result *models.ProcessamentoResult, expectedVersion int64) error
}

// Service coordinates consolidation sessions: the backlog gate, the
// confirmation flow for half-entered days, and the single-writer aggregate
// persistence.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires a new consolidation service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// NewSession creates a fresh document cache for one processing run. Sessions
// are never shared across runs; staleness ends with the session.
func (s *Service) NewSession() *SessionCache {
	return NewSessionCache(s.store)
}

// Proposal is the first phase of the two-phase consolidation API. It tells the
// caller whether the run is blocked by a backlog, needs an explicit
// confirmation, or can proceed.
type Proposal struct {
	DateKey           string        `json:"data"`
	Blocked           bool          `json:"bloqueado"`
	Backlog           []BacklogItem `json:"pendencias,omitempty"`
	NeedsConfirmation bool          `json:"requer_confirmacao"`
	MissingShift      string        `json:"turno_ausente,omitempty"`
	AlreadyProcessed  bool          `json:"ja_processado"`
}

// Propose evaluates the preconditions for consolidating dateKey without
// writing anything. Unresolved historical dates block the run; a single
// present shift requires confirmation; no data at all is terminal.
func (s *Service) Propose(ctx context.Context, session *SessionCache, dateKey string) (*Proposal, error) {
	backlog, err := s.ScanBacklog(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if len(backlog) > 0 {
		return &Proposal{DateKey: dateKey, Blocked: true, Backlog: backlog}, nil
	}

	doc, err := session.Get(ctx, dateKey)
	if err != nil {
		return nil, fmt.Errorf("load daily document: %w", err)
	}
	if doc == nil || !doc.HasAnyEntries() {
		return nil, ErrNoData
	}

	proposal := &Proposal{
		DateKey:          dateKey,
		AlreadyProcessed: doc.Processed == models.ProcessadoSim,
	}
	if missing := missingShiftLabel(doc); missing != "" {
		proposal.NeedsConfirmation = true
		proposal.MissingShift = missing
	}
	return proposal, nil
}

// Run is the second phase: it re-checks the backlog gate, enforces the
// confirmation requirement when a shift is missing, consolidates and persists
// the aggregate. The session cache is only refreshed after the write lands;
// a persistence failure leaves the session view untouched.
func (s *Service) Run(ctx context.Context, session *SessionCache, dateKey string, confirmed bool) (*models.ProcessamentoResult, error) {
	backlog, err := s.ScanBacklog(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if len(backlog) > 0 {
		dates := make([]string, 0, len(backlog))
		for _, item := range backlog {
			dates = append(dates, item.DateKey)
		}
		return nil, &BacklogPendingError{Dates: dates}
	}

	doc, err := session.Get(ctx, dateKey)
	if err != nil {
		return nil, fmt.Errorf("load daily document: %w", err)
	}
	if doc == nil || !doc.HasAnyEntries() {
		return nil, ErrNoData
	}

	if missing := missingShiftLabel(doc); missing != "" && !confirmed {
		return nil, &ConfirmationRequiredError{DateKey: dateKey, MissingShift: missing}
	}

	return s.consolidateDate(ctx, session, dateKey)
}

// consolidateDate computes and persists the aggregate for one date. Callers
// are expected to have applied their own gating; backfill reaches this path
// directly since present shifts are treated as final there.
func (s *Service) consolidateDate(ctx context.Context, session *SessionCache, dateKey string) (*models.ProcessamentoResult, error) {
	lock := s.dateLock(dateKey)
	lock.Lock()
	defer lock.Unlock()

	doc, err := session.Get(ctx, dateKey)
	if err != nil {
		return nil, fmt.Errorf("load daily document: %w", err)
	}
	if doc == nil || !doc.HasAnyEntries() {
		return nil, ErrNoData
	}

	result, err := Consolidate(doc, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveAggregate(ctx, dateKey, result, doc.Version); err != nil {
		return nil, fmt.Errorf("persist aggregate: %w", err)
	}

	updated := *doc
	updated.Aggregate = result
	updated.Processed = models.ProcessadoSim
	updated.Version = doc.Version + 1
	session.Put(&updated)

	s.logger.Info("date consolidated",
		zap.String("date", dateKey),
		zap.Float64("kg_total", result.ProducedTotalKg),
		zap.Float64("ctptd", result.EfficiencyOverall),
		zap.Strings("shifts", result.ShiftsIncluded))

	return result, nil
}

// dateLock returns the mutex guarding one date's consolidation. Two
// simultaneous runs for the same date serialize here; the version token on
// the write catches whatever the lock cannot see (e.g. another process).
func (s *Service) dateLock(dateKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[dateKey]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[dateKey] = lock
	}
	return lock
}

func missingShiftLabel(doc *models.DailyProductionDocument) string {
	switch {
	case doc.HasShift(models.Shift1) && !doc.HasShift(models.Shift2):
		return models.Shift2Label
	case doc.HasShift(models.Shift2) && !doc.HasShift(models.Shift1):
		return models.Shift1Label
	}
	return ""
}
