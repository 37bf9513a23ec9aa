package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmlopes/processamento/internal/domain/models"
	"github.com/dmlopes/processamento/internal/repository/mongodb"
	"github.com/dmlopes/processamento/pkg/brformat"
)

// EntryStore defines the raw shift-entry operations the production endpoints
// need. Satisfied by *mongodb.Repository.
type EntryStore interface {
	GetDailyDocument(ctx context.Context, dateKey string) (*models.DailyProductionDocument, error)
	ReplaceShiftEntries(ctx context.Context, dateKey string, shift int, entries []models.ShiftEntry) error
	SetPlannedKg(ctx context.Context, dateKey string, shift int, code string, kgPlanned float64) error
}

// ProducaoHandler serves the raw per-shift production entries. Quantities in
// request bodies may arrive as Brazilian-formatted strings; they are stored as
// plain numerics.
type ProducaoHandler struct {
	store  EntryStore
	logger *zap.Logger
}

// NewProducaoHandler constructs the HTTP handler adapter.
func NewProducaoHandler(store EntryStore, logger *zap.Logger) *ProducaoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProducaoHandler{store: store, logger: logger}
}

type shiftEntryPayload struct {
	Code         string          `json:"codigo" binding:"required"`
	ProductText  string          `json:"texto_breve"`
	Kg           brformat.Number `json:"kg"`
	Cx           brformat.Number `json:"cx"`
	Planejamento brformat.Number `json:"planejamento"`
}

type replaceShiftRequest struct {
	Entries []shiftEntryPayload `json:"entradas" binding:"required"`
}

type setPlannedRequest struct {
	Code         string          `json:"codigo" binding:"required"`
	Planejamento brformat.Number `json:"planejamento"`
}

// GetDay returns the full daily document, aggregate included when present.
func (h *ProducaoHandler) GetDay(c *gin.Context) {
	dateKey := c.Param("data")
	if !validDateKey(dateKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be YYYY-MM-DD"})
		return
	}

	doc, err := h.store.GetDailyDocument(c.Request.Context(), dateKey)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no document for this date"})
			return
		}
		h.logger.Error("failed to load daily document", zap.String("date", dateKey), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// ReplaceShift replaces one shift's full entry list. The list is replaced, not
// merged, matching re-import semantics; the date's consolidation is reset.
func (h *ProducaoHandler) ReplaceShift(c *gin.Context) {
	dateKey := c.Param("data")
	if !validDateKey(dateKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be YYYY-MM-DD"})
		return
	}
	shift, ok := parseShift(c.Param("turno"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "turno must be 1 or 2"})
		return
	}

	var req replaceShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entries := make([]models.ShiftEntry, 0, len(req.Entries))
	for _, payload := range req.Entries {
		if payload.Kg < 0 || payload.Cx < 0 || payload.Planejamento < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantities must not be negative", "codigo": payload.Code})
			return
		}
		entries = append(entries, models.ShiftEntry{
			Code:          payload.Code,
			ProductText:   models.TruncateProductText(payload.ProductText),
			KgProduced:    float64(payload.Kg),
			BoxesProduced: float64(payload.Cx),
			KgPlanned:     float64(payload.Planejamento),
		})
	}

	if err := h.store.ReplaceShiftEntries(c.Request.Context(), dateKey, shift, entries); err != nil {
		h.logger.Error("failed to replace shift entries", zap.String("date", dateKey), zap.Int("shift", shift), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save entries"})
		return
	}

	c.Status(http.StatusNoContent)
}

// SetPlanned updates the planejamento of one product line within a shift.
func (h *ProducaoHandler) SetPlanned(c *gin.Context) {
	dateKey := c.Param("data")
	if !validDateKey(dateKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be YYYY-MM-DD"})
		return
	}
	shift, ok := parseShift(c.Param("turno"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "turno must be 1 or 2"})
		return
	}

	var req setPlannedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Planejamento < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "planejamento must not be negative"})
		return
	}

	err := h.store.SetPlannedKg(c.Request.Context(), dateKey, shift, req.Code, float64(req.Planejamento))
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found in shift", "codigo": req.Code})
			return
		}
		h.logger.Error("failed to set planned kg", zap.String("date", dateKey), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save planejamento"})
		return
	}

	c.Status(http.StatusNoContent)
}

func parseShift(value string) (int, bool) {
	shift, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	if shift != models.Shift1 && shift != models.Shift2 {
		return 0, false
	}
	return shift, true
}
