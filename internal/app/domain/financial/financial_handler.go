package financial

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

// CreateAccount handles POST /api/financial/accounts.
func (h *Handler) CreateAccount(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	account, err := h.service.CreateAccount(c.Request.Context(), userID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, account)
}

// ListAccounts handles GET /api/financial/accounts.
func (h *Handler) ListAccounts(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	accounts, err := h.service.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, accounts)
}

// CreateTransaction handles POST /api/financial/transactions.
func (h *Handler) CreateTransaction(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}
	transaction, err := h.service.CreateTransaction(c.Request.Context(), userID, req)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusCreated, transaction)
}

// ListTransactions handles GET /api/financial/transactions with optional
// type, category and date range filters.
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	p := api.ParsePagination(c)
	filter := models.TransactionFilter{Page: p.Page, Limit: p.Limit}

	if v := c.Query("type"); v != "" {
		filter.TransactionType = &v
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			api.HandleError(c, fmt.Errorf("invalid startDate: %w", models.ErrValidation))
			return
		}
		filter.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			api.HandleError(c, fmt.Errorf("invalid endDate: %w", models.ErrValidation))
			return
		}
		filter.EndDate = &t
	}

	transactions, total, err := h.service.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, api.NewPaginatedData(transactions, p, total))
}
