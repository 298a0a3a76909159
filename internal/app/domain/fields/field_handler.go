package fields

import (
	"errors"
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

// List handles GET /api/fields.
func (h *Handler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	includeInactive := c.Query("includeInactive") == "true"
	fields, err := h.service.ListFields(c.Request.Context(), userID, includeInactive)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, fields)
}

// Get handles GET /api/fields/:id.
func (h *Handler) Get(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.HandleError(c, fmt.Errorf("invalid field id: %w", models.ErrBadRequest))
		return
	}
	field, err := h.service.GetField(c.Request.Context(), userID, fieldID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, field)
}

// Create handles POST /api/fields.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req models.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	field, err := h.service.CreateField(c.Request.Context(), userID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, field)
}

// Update handles PUT /api/fields/:id.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.HandleError(c, fmt.Errorf("invalid field id: %w", models.ErrBadRequest))
		return
	}
	var req models.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	field, err := h.service.UpdateField(c.Request.Context(), userID, fieldID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, field)
}

// Delete handles DELETE /api/fields/:id. Dependent records block deletion
// with a 409 carrying the counts, unless force=true is passed.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.HandleError(c, fmt.Errorf("invalid field id: %w", models.ErrBadRequest))
		return
	}
	force := c.Query("force") == "true"

	deps, err := h.service.DeleteField(c.Request.Context(), userID, fieldID, force)
	if err != nil {
		if errors.Is(err, models.ErrDependencyExists) && deps != nil {
			api.Error(c, http.StatusConflict, "field has dependent records", api.CodeForeignKeyConstraint, deps)
			return
		}
		api.HandleError(c, err)
		return
	}
	api.SuccessWithMessage(c, http.StatusOK, nil, "field deleted")
}
