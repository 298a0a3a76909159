package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

var taskCols = []string{
	"id", "user_id", "crop_id", "title", "description", "priority", "status",
	"due_date", "completed_at", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock, zap.NewNop()), mock
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	taskID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs(userID, pgxmock.AnyArg(), "Water the tomatoes", pgxmock.AnyArg(), models.TaskPriorityMedium, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(taskCols).AddRow(
			taskID, userID, nil, "Water the tomatoes", nil, models.TaskPriorityMedium,
			models.TaskStatusPending, nil, nil, now, now,
		))

	var cropID *uuid.UUID
	task, err := repo.Create(context.Background(), userID, models.CreateTaskRequest{
		CropID: cropID,
		Title:  "Water the tomatoes",
	})

	require.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE user_id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(uuid.New(), userID, nil, "First", nil, models.TaskPriorityHigh,
				models.TaskStatusPending, nil, nil, now, now).
			AddRow(uuid.New(), userID, nil, "Second", nil, models.TaskPriorityLow,
				models.TaskStatusCompleted, nil, &now, now, now))

	tasks, err := repo.List(context.Background(), userID, nil)

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "First", tasks[0].Title)
	assert.Equal(t, "Second", tasks[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryList_StatusFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE user_id = \\$1 AND status = \\$2").
		WithArgs(userID, models.TaskStatusPending).
		WillReturnRows(pgxmock.NewRows(taskCols))

	tasks, err := repo.List(context.Background(), userID, strPtr(models.TaskStatusPending))

	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdate_SetsCompletedAt(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	taskID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("UPDATE tasks SET status = \\$1, completed_at = NOW\\(\\), updated_at = NOW\\(\\)").
		WithArgs(models.TaskStatusCompleted, taskID, userID).
		WillReturnRows(pgxmock.NewRows(taskCols).AddRow(
			taskID, userID, nil, "Prune", nil, models.TaskPriorityMedium,
			models.TaskStatusCompleted, nil, &now, now, now,
		))

	task, err := repo.Update(context.Background(), userID, taskID, models.UpdateTaskRequest{
		Status: strPtr(models.TaskStatusCompleted),
	})

	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	require.NotNil(t, task.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdate_NoFields(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.Update(context.Background(), uuid.New(), uuid.New(), models.UpdateTaskRequest{})

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestRepositoryUpdate_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	taskID := uuid.New()

	mock.ExpectQuery("UPDATE tasks SET title").
		WithArgs("Renamed", taskID, userID).
		WillReturnRows(pgxmock.NewRows(taskCols))

	_, err := repo.Update(context.Background(), userID, taskID, models.UpdateTaskRequest{
		Title: strPtr("Renamed"),
	})

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	taskID := uuid.New()

	mock.ExpectExec("DELETE FROM tasks").
		WithArgs(taskID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), userID, taskID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDelete_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM tasks").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }
