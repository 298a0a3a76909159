package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/farmflow/backend/internal/app/models"
	"github.com/farmflow/backend/internal/pkg/config"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Register(ctx context.Context, username, email, password string) (string, *models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	jwt    *JWTService
	cfg    *config.Config
}

func NewService(repo Repository, cfg *config.Config, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, jwt: NewJWTService(), cfg: cfg}
}

func (s *ServiceImpl) jwtConfig() JWTConfig {
	return JWTConfig{
		SecretKey:       s.cfg.JWT.Secret,
		TokenExpiration: time.Duration(s.cfg.JWT.ExpirationHrs) * time.Hour,
		CookieName:      s.cfg.JWT.CookieName,
	}
}

// Login validates credentials and returns a signed access token. Failures
// never reveal whether the email or the password was wrong.
func (s *ServiceImpl) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	l := s.logger.With(zap.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		l.Warn("Login attempt for unknown email")
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.Warn("Password mismatch", zap.String("user_id", user.ID.String()))
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	token, err := s.jwt.GenerateToken(s.jwtConfig(), user.ID.String(), user.Email, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// Register creates the user and returns a signed access token for the new
// session.
func (s *ServiceImpl) Register(ctx context.Context, username, email, password string) (string, *models.User, error) {
	l := s.logger.With(zap.String("method", "Register"))

	if email == "" || password == "" {
		return "", nil, fmt.Errorf("email and password are required: %w", models.ErrValidation)
	}
	if len(password) < 8 {
		return "", nil, fmt.Errorf("password must be at least 8 characters: %w", models.ErrValidation)
	}

	hash, err := s.jwt.HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.repo.Register(ctx, username, email, hash)
	if err != nil {
		return "", nil, err
	}
	l.Info("User registered", zap.String("user_id", userID.String()))

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwt.GenerateToken(s.jwtConfig(), user.ID.String(), user.Email, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

func (s *ServiceImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}
