package tasks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateTask(ctx context.Context, userID uuid.UUID, req models.CreateTaskRequest) (*models.Task, error)
	ListTasks(ctx context.Context, userID uuid.UUID, status *string) ([]models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) CreateTask(ctx context.Context, userID uuid.UUID, req models.CreateTaskRequest) (*models.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("task title is required: %w", models.ErrValidation)
	}
	return s.repo.Create(ctx, userID, req)
}

func (s *ServiceImpl) ListTasks(ctx context.Context, userID uuid.UUID, status *string) ([]models.Task, error) {
	return s.repo.List(ctx, userID, status)
}

func (s *ServiceImpl) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	if req.Status != nil {
		switch *req.Status {
		case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		default:
			return nil, fmt.Errorf("invalid task status: %w", models.ErrValidation)
		}
	}
	return s.repo.Update(ctx, userID, taskID, req)
}

func (s *ServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, taskID)
}
