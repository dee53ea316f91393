package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/homeplate/backend/internal/domain"
	"github.com/homeplate/backend/internal/usecase"
)

const (
	historyDefaultLimit = 10
	historyMaxLimit     = 50
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sync    *usecase.SyncService
	history domain.SyncHistoryRepository
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(sync *usecase.SyncService, history domain.SyncHistoryRepository, logger *zap.Logger) *Handler {
	return &Handler{sync: sync, history: history, logger: logger}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "homeplate-backend",
		"version": "1.0.0",
	})
}

// TriggerSync runs one sync invocation. An empty body is valid and
// means "sync the default page of recipes". Callers always receive a
// structured summary, even when the run failed.
func (h *Handler) TriggerSync(c *gin.Context) {
	var req domain.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	summary, err := h.sync.Run(c.Request.Context(), req)
	if err != nil {
		// Whole-run failure; partial counts are still in the summary
		c.JSON(http.StatusInternalServerError, summary)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// SyncHistory returns recent sync run records, most recent first.
func (h *Handler) SyncHistory(c *gin.Context) {
	limit := historyDefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}

	records, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to load sync history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to load sync history",
		})
		return
	}
	if records == nil {
		records = []domain.SyncRunRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": records,
	})
}

// CompareCosts computes the home-cooked vs delivery comparison for the
// marketing page. Public, no auth.
func (h *Handler) CompareCosts(c *gin.Context) {
	var input usecase.ComparisonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, usecase.CompareCosts(input))
}
