package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmlopes/processamento/internal/repository/mongodb"
	"github.com/dmlopes/processamento/internal/service/processamento"
	"github.com/dmlopes/processamento/pkg/clients/notify"
)

const dateLayout = "2006-01-02"

// ProcessamentoHandler exposes the two-phase consolidation flow and the
// backfill action over HTTP. Each request gets its own session cache.
type ProcessamentoHandler struct {
	svc      *processamento.Service
	notifier notify.Client
	location *time.Location
	logger   *zap.Logger
}

// NewProcessamentoHandler constructs the HTTP handler adapter. notifier may be
// nil when no webhook is configured.
func NewProcessamentoHandler(svc *processamento.Service, notifier notify.Client, location *time.Location, logger *zap.Logger) *ProcessamentoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &ProcessamentoHandler{svc: svc, notifier: notifier, location: location, logger: logger}
}

type proposeRequest struct {
	DateKey string `json:"data" binding:"required"`
}

type executeRequest struct {
	DateKey   string `json:"data" binding:"required"`
	Confirmed bool   `json:"confirmado"`
}

type backfillRequest struct {
	DateKeys []string `json:"datas"`
}

// Propose evaluates whether the date can be consolidated: blocked by backlog,
// waiting on confirmation, or ready.
func (h *ProcessamentoHandler) Propose(c *gin.Context) {
	var req proposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !validDateKey(req.DateKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be YYYY-MM-DD"})
		return
	}

	session := h.svc.NewSession()
	proposal, err := h.svc.Propose(c.Request.Context(), session, req.DateKey)
	if err != nil {
		h.renderProcessingError(c, req.DateKey, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Execute runs the consolidation for one date. confirmado must be true when
// the proposal reported a missing shift.
func (h *ProcessamentoHandler) Execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !validDateKey(req.DateKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be YYYY-MM-DD"})
		return
	}

	session := h.svc.NewSession()
	result, err := h.svc.Run(c.Request.Context(), session, req.DateKey, req.Confirmed)
	if err != nil {
		h.renderProcessingError(c, req.DateKey, err)
		return
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyConsolidation(c.Request.Context(), result); err != nil {
			h.logger.Error("failed to notify consolidation", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, result)
}

// Backfill consolidates the requested dates, or the full scanned backlog when
// no dates are given. Per-date failures are reported, never fatal to the batch.
func (h *ProcessamentoHandler) Backfill(c *gin.Context) {
	var req backfillRequest
	// An empty body means "process the whole backlog".
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	for _, dateKey := range req.DateKeys {
		if !validDateKey(dateKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "datas must be YYYY-MM-DD"})
			return
		}
	}

	dateKeys := req.DateKeys
	if len(dateKeys) == 0 {
		today := time.Now().In(h.location).Format(dateLayout)
		backlog, err := h.svc.ScanBacklog(c.Request.Context(), today)
		if err != nil {
			h.logger.Error("failed to scan backlog", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to scan backlog"})
			return
		}
		for _, item := range backlog {
			dateKeys = append(dateKeys, item.DateKey)
		}
	}

	session := h.svc.NewSession()
	report := h.svc.ProcessBacklog(c.Request.Context(), session, dateKeys)

	if h.notifier != nil && len(dateKeys) > 0 {
		if err := h.notifier.NotifyBackfill(c.Request.Context(), len(report.Succeeded), len(report.Failed)); err != nil {
			h.logger.Error("failed to notify backfill", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, report)
}

func (h *ProcessamentoHandler) renderProcessingError(c *gin.Context, dateKey string, err error) {
	var confirmationErr *processamento.ConfirmationRequiredError
	var backlogErr *processamento.BacklogPendingError

	switch {
	case errors.Is(err, processamento.ErrNoData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no production data for this date", "data": dateKey})
	case errors.As(err, &confirmationErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":         "confirmation required",
			"data":          dateKey,
			"turno_ausente": confirmationErr.MissingShift,
		})
	case errors.As(err, &backlogErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "unprocessed dates pending backfill",
			"pendencias": backlogErr.Dates,
		})
	case errors.Is(err, mongodb.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "date was consolidated concurrently, reload and retry", "data": dateKey})
	default:
		h.logger.Error("consolidation failed", zap.String("date", dateKey), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process date"})
	}
}

func validDateKey(dateKey string) bool {
	_, err := time.Parse(dateLayout, dateKey)
	return err == nil
}
