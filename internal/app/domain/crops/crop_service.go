package crops

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateCrop(ctx context.Context, userID uuid.UUID, req models.CreateCropRequest) (*models.Crop, error)
	GetCrop(ctx context.Context, userID, cropID uuid.UUID) (*models.Crop, error)
	ListCrops(ctx context.Context, userID uuid.UUID) ([]models.Crop, error)
	UpdateCrop(ctx context.Context, userID, cropID uuid.UUID, req models.UpdateCropRequest) (*models.Crop, error)
	DeleteCrop(ctx context.Context, userID, cropID uuid.UUID) error
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func validateCropRequest(req models.CreateCropRequest) error {
	if req.Name == "" {
		return fmt.Errorf("crop name is required: %w", models.ErrValidation)
	}
	if !req.ExpectedHarvestDate.After(req.PlantingDate) {
		return fmt.Errorf("expected harvest date must be after planting date: %w", models.ErrValidation)
	}
	if req.Area != nil && *req.Area <= 0 {
		return fmt.Errorf("area must be positive: %w", models.ErrValidation)
	}
	return nil
}

func (s *ServiceImpl) CreateCrop(ctx context.Context, userID uuid.UUID, req models.CreateCropRequest) (*models.Crop, error) {
	if err := validateCropRequest(req); err != nil {
		return nil, err
	}
	crop, err := s.repo.Create(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Crop created",
		zap.String("crop_id", crop.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return crop, nil
}

func (s *ServiceImpl) GetCrop(ctx context.Context, userID, cropID uuid.UUID) (*models.Crop, error) {
	return s.repo.GetByID(ctx, userID, cropID)
}

func (s *ServiceImpl) ListCrops(ctx context.Context, userID uuid.UUID) ([]models.Crop, error) {
	return s.repo.List(ctx, userID)
}

func (s *ServiceImpl) UpdateCrop(ctx context.Context, userID, cropID uuid.UUID, req models.UpdateCropRequest) (*models.Crop, error) {
	if req.Name != nil && *req.Name == "" {
		return nil, fmt.Errorf("crop name cannot be empty: %w", models.ErrValidation)
	}
	if req.Area != nil && *req.Area <= 0 {
		return nil, fmt.Errorf("area must be positive: %w", models.ErrValidation)
	}
	return s.repo.Update(ctx, userID, cropID, req)
}

func (s *ServiceImpl) DeleteCrop(ctx context.Context, userID, cropID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, cropID)
}
