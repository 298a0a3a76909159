package activities

import (
	"fmt"
	"net/http"
	"strconv"
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

func sinceParam(c *gin.Context) *time.Time {
	raw := c.Query("since")
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

// CreateIrrigation handles POST /api/irrigation.
func (h *Handler) CreateIrrigation(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req models.CreateIrrigationLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	log, err := h.service.RecordIrrigation(c.Request.Context(), userID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, log)
}

// ListIrrigation handles GET /api/irrigation.
func (h *Handler) ListIrrigation(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	logs, err := h.service.ListIrrigation(c.Request.Context(), userID, sinceParam(c))
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, logs)
}

// CreateFertilizer handles POST /api/fertilizer.
func (h *Handler) CreateFertilizer(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req models.CreateFertilizerLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	log, err := h.service.RecordFertilizer(c.Request.Context(), userID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, log)
}

// ListFertilizer handles GET /api/fertilizer.
func (h *Handler) ListFertilizer(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	logs, err := h.service.ListFertilizer(c.Request.Context(), userID, sinceParam(c))
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, logs)
}

// CreatePestDisease handles POST /api/pest-disease.
func (h *Handler) CreatePestDisease(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req models.CreatePestDiseaseLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	log, err := h.service.RecordPestDisease(c.Request.Context(), userID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, log)
}

// ListPestDisease handles GET /api/pest-disease.
func (h *Handler) ListPestDisease(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	logs, err := h.service.ListPestDisease(c.Request.Context(), userID, sinceParam(c))
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, logs)
}

// CreateHarvest handles POST /api/harvest.
func (h *Handler) CreateHarvest(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req models.CreateHarvestLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	log, err := h.service.RecordHarvest(c.Request.Context(), userID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, log)
}

// ListHarvest handles GET /api/harvest.
func (h *Handler) ListHarvest(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	logs, err := h.service.ListHarvest(c.Request.Context(), userID, sinceParam(c))
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, logs)
}

// ListRecent handles GET /api/activities, the merged feed.
func (h *Handler) ListRecent(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 {
		limit = 100
	}
	activities, err := h.service.RecentActivities(c.Request.Context(), userID, limit)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, activities)
}
