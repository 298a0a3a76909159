package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	Create(ctx context.Context, userID uuid.UUID, req models.CreateTaskRequest) (*models.Task, error)
	List(ctx context.Context, userID uuid.UUID, status *string) ([]models.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

// PgxPool is the slice of pgxpool.Pool the repository uses. Narrowed to an
// interface so tests can substitute pgxmock.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool PgxPool
}

func NewRepository(pgpool PgxPool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

const taskColumns = `id, user_id, crop_id, title, description, priority, status,
	due_date, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.CropID, &t.Title, &t.Description, &t.Priority,
		&t.Status, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, userID uuid.UUID, req models.CreateTaskRequest) (*models.Task, error) {
	ctx, span := otel.Tracer("TaskRepository").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	priority := models.TaskPriorityMedium
	if req.Priority != nil {
		priority = *req.Priority
	}

	query := fmt.Sprintf(`INSERT INTO tasks (user_id, crop_id, title, description, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING %s`, taskColumns)
	task, err := scanTask(r.pgpool.QueryRow(ctx, query,
		userID, req.CropID, req.Title, req.Description, priority, req.DueDate))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		r.logger.Error("Failed to insert task", zap.Error(err))
		return nil, fmt.Errorf("database error creating task: %w", err)
	}

	span.SetStatus(codes.Ok, "Task created")
	return task, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userID uuid.UUID, status *string) ([]models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE user_id = $1`, taskColumns)
	args := []interface{}{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY due_date ASC NULLS LAST`

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning task row: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, userID, taskID uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	setClauses := []string{}
	args := []interface{}{}
	argPos := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if req.Title != nil {
		addClause("title", *req.Title)
	}
	if req.Description != nil {
		addClause("description", *req.Description)
	}
	if req.Priority != nil {
		addClause("priority", *req.Priority)
	}
	if req.Status != nil {
		addClause("status", *req.Status)
		if *req.Status == models.TaskStatusCompleted {
			setClauses = append(setClauses, "completed_at = NOW()")
		}
	}
	if req.DueDate != nil {
		addClause("due_date", *req.DueDate)
	}

	if len(setClauses) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", models.ErrBadRequest)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argPos, argPos+1, taskColumns)
	args = append(args, taskID, userID)

	task, err := scanTask(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task not found: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error updating task: %w", err)
	}
	return task, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return fmt.Errorf("database error deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task not found: %w", models.ErrNotFound)
	}
	return nil
}
