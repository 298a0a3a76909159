package equipment

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

// List handles GET /api/land-preparation/equipment.
func (h *Handler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	items, err := h.service.ListEquipment(c.Request.Context(), userID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, items)
}

// Create handles POST /api/land-preparation/equipment.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req models.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	eq, err := h.service.CreateEquipment(c.Request.Context(), userID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, eq)
}

// Update handles PUT /api/land-preparation/equipment/:id.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	equipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.HandleError(c, fmt.Errorf("invalid equipment id: %w", models.ErrBadRequest))
		return
	}
	var req models.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	eq, err := h.service.UpdateEquipment(c.Request.Context(), userID, equipmentID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, eq)
}

// Delete handles DELETE /api/land-preparation/equipment/:id.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	equipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.HandleError(c, fmt.Errorf("invalid equipment id: %w", models.ErrBadRequest))
		return
	}
	if err := h.service.DeleteEquipment(c.Request.Context(), userID, equipmentID); err != nil {
		api.HandleError(c, err)
		return
	}
	api.SuccessWithMessage(c, http.StatusOK, nil, "equipment deleted")
}
