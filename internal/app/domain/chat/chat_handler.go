package chat

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/api"
	"github.com/farmflow/backend/internal/app/domain/auth"
	"github.com/farmflow/backend/internal/app/models"
	"github.com/farmflow/backend/internal/pkg/services/assistant"
)

// CropLister and TaskLister supply the farm snapshot for the prompt.
type CropLister interface {
	ListCrops(ctx context.Context, userID uuid.UUID) ([]models.Crop, error)
}

type TaskLister interface {
	ListTasks(ctx context.Context, userID uuid.UUID, status *string) ([]models.Task, error)
}

type Handler struct {
	assistant *assistant.Service
	crops     CropLister
	tasks     TaskLister
	enabled   bool
	logger    *zap.Logger
}

func NewHandler(svc *assistant.Service, crops CropLister, tasks TaskLister, enabled bool, logger *zap.Logger) *Handler {
	return &Handler{assistant: svc, crops: crops, tasks: tasks, enabled: enabled, logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat handles POST /api/ai/chat.
func (h *Handler) Chat(c *gin.Context) {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		api.HandleError(c, fmt.Errorf("%w", models.ErrUnauthenticated))
		return
	}
	if !h.enabled || !h.assistant.Enabled() {
		api.HandleError(c, fmt.Errorf("chat assistant unavailable: %w", models.ErrServiceUnavailable))
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		api.HandleError(c, fmt.Errorf("message is required: %w", models.ErrValidation))
		return
	}

	ctx := c.Request.Context()
	farm := assistant.FarmContext{}
	if crops, err := h.crops.ListCrops(ctx, userID); err == nil {
		farm.Crops = crops
	} else {
		h.logger.Warn("Chat context crop lookup failed", zap.Error(err))
	}
	pending := models.TaskStatusPending
	if tasks, err := h.tasks.ListTasks(ctx, userID, &pending); err == nil {
		farm.Tasks = tasks
	} else {
		h.logger.Warn("Chat context task lookup failed", zap.Error(err))
	}

	reply, err := h.assistant.Chat(ctx, req.Message, farm)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, gin.H{"reply": reply})
}
