package crops

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

func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, models.ErrBadRequest)
	}
	return id, nil
}

// List handles GET /api/crops.
func (h *Handler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	crops, err := h.service.ListCrops(c.Request.Context(), userID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, crops)
}

// Get handles GET /api/crops/:id.
func (h *Handler) Get(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	cropID, err := parseIDParam(c, "id")
	if err != nil {
		api.HandleError(c, err)
		return
	}
	crop, err := h.service.GetCrop(c.Request.Context(), userID, cropID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, crop)
}

// Create handles POST /api/crops.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req models.CreateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	crop, err := h.service.CreateCrop(c.Request.Context(), userID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, crop)
}

// Update handles PUT /api/crops/:id.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	cropID, err := parseIDParam(c, "id")
	if err != nil {
		api.HandleError(c, err)
		return
	}
	var req models.UpdateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	crop, err := h.service.UpdateCrop(c.Request.Context(), userID, cropID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, crop)
}

// Delete handles DELETE /api/crops/:id.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	cropID, err := parseIDParam(c, "id")
	if err != nil {
		api.HandleError(c, err)
		return
	}
	if err := h.service.DeleteCrop(c.Request.Context(), userID, cropID); err != nil {
		api.HandleError(c, err)
		return
	}
	api.SuccessWithMessage(c, http.StatusOK, nil, "crop deleted")
}
