package equipment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

// Maintenance is flagged when the next service date falls within this window.
const maintenanceWindowDays = 7

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateEquipment(ctx context.Context, userID uuid.UUID, req models.CreateEquipmentRequest) (*models.Equipment, error)
	GetEquipment(ctx context.Context, userID, equipmentID uuid.UUID) (*models.Equipment, error)
	ListEquipment(ctx context.Context, userID uuid.UUID) ([]models.EquipmentWithMaintenance, error)
	UpdateEquipment(ctx context.Context, userID, equipmentID uuid.UUID, req models.UpdateEquipmentRequest) (*models.Equipment, error)
	DeleteEquipment(ctx context.Context, userID, equipmentID uuid.UUID) error
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) CreateEquipment(ctx context.Context, userID uuid.UUID, req models.CreateEquipmentRequest) (*models.Equipment, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("equipment name is required: %w", models.ErrValidation)
	}
	if req.EquipmentType == "" {
		return nil, fmt.Errorf("equipment type is required: %w", models.ErrValidation)
	}
	return s.repo.Create(ctx, userID, req)
}

func (s *ServiceImpl) GetEquipment(ctx context.Context, userID, equipmentID uuid.UUID) (*models.Equipment, error) {
	return s.repo.GetByID(ctx, userID, equipmentID)
}

// ListEquipment annotates each item with its derived maintenance flag.
func (s *ServiceImpl) ListEquipment(ctx context.Context, userID uuid.UUID) ([]models.EquipmentWithMaintenance, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	result := make([]models.EquipmentWithMaintenance, 0, len(items))
	for _, item := range items {
		result = append(result, models.EquipmentWithMaintenance{
			Equipment:      item,
			MaintenanceDue: item.MaintenanceDue(now, maintenanceWindowDays),
		})
	}
	return result, nil
}

func (s *ServiceImpl) UpdateEquipment(ctx context.Context, userID, equipmentID uuid.UUID, req models.UpdateEquipmentRequest) (*models.Equipment, error) {
	if req.Name != nil && *req.Name == "" {
		return nil, fmt.Errorf("equipment name cannot be empty: %w", models.ErrValidation)
	}
	return s.repo.Update(ctx, userID, equipmentID, req)
}

func (s *ServiceImpl) DeleteEquipment(ctx context.Context, userID, equipmentID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, equipmentID)
}
