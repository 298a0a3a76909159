package weather

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/api"
	"github.com/farmflow/backend/internal/app/models"
)

// Provider fetches a weather report for a coordinate pair.
type Provider interface {
	GetReport(ctx context.Context, latitude, longitude float64) (*models.WeatherReport, error)
}

type Handler struct {
	provider Provider
	logger   *zap.Logger
}

func NewHandler(provider Provider, logger *zap.Logger) *Handler {
	return &Handler{provider: provider, logger: logger}
}

// Current handles GET /api/weather?lat=..&lon=..
func (h *Handler) Current(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		api.HandleError(c, fmt.Errorf("lat and lon query parameters are required: %w", models.ErrValidation))
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		api.HandleError(c, fmt.Errorf("coordinates out of range: %w", models.ErrValidation))
		return
	}

	report, err := h.provider.GetReport(c.Request.Context(), lat, lon)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, report)
}
