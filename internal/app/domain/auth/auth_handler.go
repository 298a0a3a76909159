package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/api"
	"github.com/farmflow/backend/internal/app/models"
	"github.com/farmflow/backend/internal/app/observability/metrics"
	"github.com/farmflow/backend/internal/pkg/config"
)

type Handler struct {
	service Service
	cfg     *config.Config
	logger  *zap.Logger
}

func NewHandler(service Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{service: service, cfg: cfg, logger: logger}
}

func (h *Handler) setAuthCookie(c *gin.Context, token string) {
	maxAge := h.cfg.JWT.ExpirationHrs * 3600
	c.SetCookie(h.cfg.JWT.CookieName, token, maxAge, "/", "", h.cfg.JWT.SecureCookies, true)
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}

	token, user, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	metrics.Get().RecordAuthRequest(c.Request.Context(), "signup", err == nil)
	if err != nil {
		api.HandleError(c, err)
		return
	}

	h.setAuthCookie(c, token)
	api.Success(c, http.StatusCreated, models.AuthResponse{Token: token, User: *user})
}

// Signin handles POST /api/auth/signin.
func (h *Handler) Signin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.HandleError(c, fmt.Errorf("invalid request body: %w", models.ErrBadRequest))
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	metrics.Get().RecordAuthRequest(c.Request.Context(), "signin", err == nil)
	if err != nil {
		api.HandleError(c, err)
		return
	}

	h.setAuthCookie(c, token)
	api.Success(c, http.StatusOK, models.AuthResponse{Token: token, User: *user})
}

// Signout handles POST /api/auth/signout by expiring the cookie.
func (h *Handler) Signout(c *gin.Context) {
	c.SetCookie(h.cfg.JWT.CookieName, "", -1, "/", "", h.cfg.JWT.SecureCookies, true)
	api.SuccessWithMessage(c, http.StatusOK, nil, "signed out")
}

// Verify handles GET /api/auth/verify. Requires the auth middleware.
func (h *Handler) Verify(c *gin.Context) {
	userID, err := UserIDFromContext(c)
	if err != nil {
		api.HandleError(c, fmt.Errorf("%w", models.ErrUnauthenticated))
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		api.HandleError(c, err)
		return
	}
	api.Success(c, http.StatusOK, user)
}
