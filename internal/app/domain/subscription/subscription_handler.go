package subscription

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

// Status handles GET /api/subscription.
func (h *Handler) Status(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	status, err := h.service.GetSubscriptionStatus(c.Request.Context(), userID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, status)
}

type cancelRequest struct {
	AtPeriodEnd bool `json:"atPeriodEnd"`
}

// Cancel handles POST /api/subscription/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	sub, err := h.service.CancelSubscription(c.Request.Context(), userID, req.AtPeriodEnd)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.SuccessWithMessage(c, http.StatusOK, sub, "Subscription canceled")
}

type paymentMethodRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

// AddPaymentMethod handles POST /api/subscription/payment-method.
func (h *Handler) AddPaymentMethod(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req paymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	sub, err := h.service.AddPaymentMethodAndActivateTrial(c.Request.Context(), userID, req.PaymentMethodID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.SuccessWithMessage(c, http.StatusOK, sub, "Payment method added")
}

// CreateSetupIntent handles POST /api/payments/setup-intent. The returned
// client secret lets the frontend collect a card without charging it.
func (h *Handler) CreateSetupIntent(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	intent, err := h.service.CreateSetupIntent(c.Request.Context(), userID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, intent)
}

type createIntentRequest struct {
	PlanType string `json:"planType"`
}

// CreatePaymentIntent handles POST /api/payments/intent.
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	intent, err := h.service.CreatePaymentIntent(c.Request.Context(), userID, req.PlanType)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, intent)
}

type confirmPaymentRequest struct {
	Reference string `json:"reference"`
}

// ConfirmPayment handles POST /api/payments/confirm.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Reference == "" {
		api.HandleError(c, fmt.Errorf("reference is required: %w", models.ErrValidation))
		return
	}
	sub, err := h.service.ConfirmPayment(c.Request.Context(), userID, req.Reference)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.SuccessWithMessage(c, http.StatusOK, sub, "Payment confirmed")
}
