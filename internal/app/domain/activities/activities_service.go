package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	RecordIrrigation(ctx context.Context, userID uuid.UUID, req models.CreateIrrigationLogRequest) (*models.IrrigationLog, error)
	RecordFertilizer(ctx context.Context, userID uuid.UUID, req models.CreateFertilizerLogRequest) (*models.FertilizerLog, error)
	RecordPestDisease(ctx context.Context, userID uuid.UUID, req models.CreatePestDiseaseLogRequest) (*models.PestDiseaseLog, error)
	RecordHarvest(ctx context.Context, userID uuid.UUID, req models.CreateHarvestLogRequest) (*models.HarvestLog, error)
	ListIrrigation(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.IrrigationLog, error)
	ListFertilizer(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.FertilizerLog, error)
	ListPestDisease(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.PestDiseaseLog, error)
	ListHarvest(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.HarvestLog, error)
	RecentActivities(ctx context.Context, userID uuid.UUID, limit int) ([]models.Activity, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) RecordIrrigation(ctx context.Context, userID uuid.UUID, req models.CreateIrrigationLogRequest) (*models.IrrigationLog, error) {
	if req.CropID == uuid.Nil {
		return nil, fmt.Errorf("crop id is required: %w", models.ErrValidation)
	}
	if req.WaterAmount <= 0 {
		return nil, fmt.Errorf("water amount must be positive: %w", models.ErrValidation)
	}
	return s.repo.CreateIrrigationLog(ctx, userID, req)
}

func (s *ServiceImpl) RecordFertilizer(ctx context.Context, userID uuid.UUID, req models.CreateFertilizerLogRequest) (*models.FertilizerLog, error) {
	if req.CropID == uuid.Nil {
		return nil, fmt.Errorf("crop id is required: %w", models.ErrValidation)
	}
	if req.FertilizerType == "" {
		return nil, fmt.Errorf("fertilizer type is required: %w", models.ErrValidation)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", models.ErrValidation)
	}
	return s.repo.CreateFertilizerLog(ctx, userID, req)
}

func (s *ServiceImpl) RecordPestDisease(ctx context.Context, userID uuid.UUID, req models.CreatePestDiseaseLogRequest) (*models.PestDiseaseLog, error) {
	if req.CropID == uuid.Nil {
		return nil, fmt.Errorf("crop id is required: %w", models.ErrValidation)
	}
	if req.IncidentType != models.IncidentTypePest && req.IncidentType != models.IncidentTypeDisease {
		return nil, fmt.Errorf("incident type must be PEST or DISEASE: %w", models.ErrValidation)
	}
	switch req.Severity {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
	default:
		return nil, fmt.Errorf("severity must be LOW, MEDIUM or HIGH: %w", models.ErrValidation)
	}
	return s.repo.CreatePestDiseaseLog(ctx, userID, req)
}

func (s *ServiceImpl) RecordHarvest(ctx context.Context, userID uuid.UUID, req models.CreateHarvestLogRequest) (*models.HarvestLog, error) {
	if req.CropID == uuid.Nil {
		return nil, fmt.Errorf("crop id is required: %w", models.ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", models.ErrValidation)
	}
	return s.repo.CreateHarvestLog(ctx, userID, req)
}

func (s *ServiceImpl) ListIrrigation(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.IrrigationLog, error) {
	return s.repo.ListIrrigationLogs(ctx, userID, since)
}

func (s *ServiceImpl) ListFertilizer(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.FertilizerLog, error) {
	return s.repo.ListFertilizerLogs(ctx, userID, since)
}

func (s *ServiceImpl) ListPestDisease(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.PestDiseaseLog, error) {
	return s.repo.ListPestDiseaseLogs(ctx, userID, since)
}

func (s *ServiceImpl) ListHarvest(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.HarvestLog, error) {
	return s.repo.ListHarvestLogs(ctx, userID, since)
}

func (s *ServiceImpl) RecentActivities(ctx context.Context, userID uuid.UUID, limit int) ([]models.Activity, error) {
	return s.repo.ListRecentActivities(ctx, userID, limit)
}
