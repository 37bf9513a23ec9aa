package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmlopes/processamento/internal/domain/models"
	"github.com/dmlopes/processamento/internal/service/metas"
	"github.com/dmlopes/processamento/pkg/brformat"
)

// MetasHandler serves the monthly goal projection and the settings-form
// writes.
type MetasHandler struct {
	svc      *metas.Service
	location *time.Location
	logger   *zap.Logger
}

// NewMetasHandler constructs the HTTP handler adapter.
func NewMetasHandler(svc *metas.Service, location *time.Location, logger *zap.Logger) *MetasHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &MetasHandler{svc: svc, location: location, logger: logger}
}

type goalConfigRequest struct {
	MinimumMonthlyTargetKg brformat.Number `json:"meta_minima_mensal"`
	WorkingDaysInMonth     int             `json:"dias_uteis_mes"`
}

type classificationTargetRequest struct {
	Classification string          `json:"classificacao" binding:"required"`
	TargetKg       brformat.Number `json:"meta_kg"`
}

// GetProjection computes goal progress for the periodo query parameter
// (YYYY-MM), defaulting to the current month.
func (h *MetasHandler) GetProjection(c *gin.Context) {
	period := c.Query("periodo")
	if period == "" {
		period = time.Now().In(h.location).Format("2006-01")
	}

	projection, err := h.svc.Project(c.Request.Context(), period)
	if err != nil {
		if errors.Is(err, metas.ErrInvalidPeriod) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "periodo must be YYYY-MM"})
			return
		}
		h.logger.Error("failed to compute goal projection", zap.String("period", period), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute projection"})
		return
	}

	c.JSON(http.StatusOK, projection)
}

// PutConfig saves the monthly goal settings.
func (h *MetasHandler) PutConfig(c *gin.Context) {
	var req goalConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cfg := models.MonthlyGoalConfig{
		MinimumMonthlyTargetKg: float64(req.MinimumMonthlyTargetKg),
		WorkingDaysInMonth:     req.WorkingDaysInMonth,
	}
	if err := h.svc.SetGoalConfig(c.Request.Context(), cfg); err != nil {
		h.logger.Error("failed to save goal config", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// PutClassificationTarget saves one classification's target override.
func (h *MetasHandler) PutClassificationTarget(c *gin.Context) {
	var req classificationTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	target := models.ClassificationTarget{
		Classification: req.Classification,
		TargetKg:       float64(req.TargetKg),
	}
	if err := h.svc.SetClassificationTarget(c.Request.Context(), target); err != nil {
		h.logger.Error("failed to save classification target", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
