package dashboard

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/api"
	"github.com/farmflow/backend/internal/app/domain/auth"
	"github.com/farmflow/backend/internal/app/models"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) userID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		api.HandleError(c, fmt.Errorf("%w", models.ErrUnauthenticated))
		return uuid.Nil, false
	}
	return userID, true
}

// parseOptions reads the optional startDate/endDate (RFC 3339 or YYYY-MM-DD)
// and includeInactive query parameters.
func parseOptions(c *gin.Context) (models.DashboardOptions, error) {
	var opts models.DashboardOptions
	if raw := c.Query("startDate"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid startDate: %w", models.ErrValidation)
		}
		opts.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid endDate: %w", models.ErrValidation)
		}
		opts.EndDate = &t
	}
	opts.IncludeInactive = c.Query("includeInactive") == "true"
	return opts, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// Summary handles GET /api/dashboard/summary.
func (h *Handler) Summary(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	opts, err := parseOptions(c)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	summary, err := h.service.GetDashboardSummary(c.Request.Context(), userID, opts)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, summary)
}

// Alerts handles GET /api/dashboard/alerts.
func (h *Handler) Alerts(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	alerts, err := h.service.GetDashboardAlerts(c.Request.Context(), userID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, gin.H{"alerts": alerts})
}

// QuickStats handles GET /api/dashboard/quick-stats.
func (h *Handler) QuickStats(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	stats, err := h.service.GetQuickStats(c.Request.Context(), userID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, stats)
}
