package fields

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateField(ctx context.Context, userID uuid.UUID, req models.CreateFieldRequest) (*models.Field, error)
	GetField(ctx context.Context, userID, fieldID uuid.UUID) (*models.Field, error)
	ListFields(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Field, error)
	UpdateField(ctx context.Context, userID, fieldID uuid.UUID, req models.UpdateFieldRequest) (*models.Field, error)
	DeleteField(ctx context.Context, userID, fieldID uuid.UUID, force bool) (*models.FieldDependencies, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) CreateField(ctx context.Context, userID uuid.UUID, req models.CreateFieldRequest) (*models.Field, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("field name is required: %w", models.ErrValidation)
	}
	if req.Area <= 0 {
		return nil, fmt.Errorf("field area must be positive: %w", models.ErrValidation)
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, fmt.Errorf("latitude and longitude must be provided together: %w", models.ErrValidation)
	}
	return s.repo.Create(ctx, userID, req)
}

func (s *ServiceImpl) GetField(ctx context.Context, userID, fieldID uuid.UUID) (*models.Field, error) {
	return s.repo.GetByID(ctx, userID, fieldID)
}

func (s *ServiceImpl) ListFields(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Field, error) {
	return s.repo.List(ctx, userID, includeInactive)
}

func (s *ServiceImpl) UpdateField(ctx context.Context, userID, fieldID uuid.UUID, req models.UpdateFieldRequest) (*models.Field, error) {
	if req.Name != nil && *req.Name == "" {
		return nil, fmt.Errorf("field name cannot be empty: %w", models.ErrValidation)
	}
	if req.Area != nil && *req.Area <= 0 {
		return nil, fmt.Errorf("field area must be positive: %w", models.ErrValidation)
	}
	return s.repo.Update(ctx, userID, fieldID, req)
}

// DeleteField refuses to remove a field with dependent crops or tasks unless
// force is set. The dependency counts are returned so the caller can surface
// them in the conflict response.
func (s *ServiceImpl) DeleteField(ctx context.Context, userID, fieldID uuid.UUID, force bool) (*models.FieldDependencies, error) {
	deps, err := s.repo.Dependencies(ctx, userID, fieldID)
	if err != nil {
		return nil, err
	}
	if deps.Any() && !force {
		return &deps, fmt.Errorf("field has dependent records: %w", models.ErrDependencyExists)
	}

	if err := s.repo.Delete(ctx, userID, fieldID); err != nil {
		return nil, err
	}
	s.logger.Info("Field deleted",
		zap.String("field_id", fieldID.String()),
		zap.Bool("forced", force && deps.Any()),
	)
	return nil, nil
}
