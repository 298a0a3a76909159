package insights

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/api"
	"github.com/farmflow/backend/internal/app/domain/auth"
	"github.com/farmflow/backend/internal/app/models"
)

type Handler struct {
	service                Service
	weatherInsightsEnabled bool
	logger                 *zap.Logger
}

func NewHandler(service Service, weatherInsightsEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{service: service, weatherInsightsEnabled: weatherInsightsEnabled, logger: logger}
}

func (h *Handler) userID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		api.HandleError(c, fmt.Errorf("%w", models.ErrUnauthenticated))
		return uuid.Nil, false
	}
	return userID, true
}

// FarmAnalytics handles POST /api/ai/analytics.
func (h *Handler) FarmAnalytics(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	insights, err := h.service.FarmInsights(c.Request.Context(), userID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, gin.H{"insights": insights})
}

type weatherInsightsRequest struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	AnalysisType string   `json:"analysisType"`
}

// WeatherInsights handles POST /api/ai/weather-insights. Coordinates are
// required; the feature can be disabled by configuration.
func (h *Handler) WeatherInsights(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	if !h.weatherInsightsEnabled {
		api.HandleError(c, fmt.Errorf("weather insights are disabled: %w", models.ErrForbidden))
		return
	}

	var req weatherInsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		api.HandleError(c, fmt.Errorf("latitude and longitude are required: %w", models.ErrValidation))
		return
	}

	insights, report, err := h.service.WeatherInsights(c.Request.Context(), userID, *req.Latitude, *req.Longitude)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, gin.H{
		"insights":          insights,
		"currentConditions": report.Current,
		"forecast":          report.Forecast,
		"alerts":            report.Alerts,
	})
}
