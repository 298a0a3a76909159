package crops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
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
	Create(ctx context.Context, userID uuid.UUID, req models.CreateCropRequest) (*models.Crop, error)
	GetByID(ctx context.Context, userID, cropID uuid.UUID) (*models.Crop, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Crop, error)
	Update(ctx context.Context, userID, cropID uuid.UUID, req models.UpdateCropRequest) (*models.Crop, error)
	Delete(ctx context.Context, userID, cropID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

const cropColumns = `id, user_id, field_id, name, variety, status, planting_date,
	expected_harvest_date, actual_harvest_date, area, notes, created_at, updated_at`

func scanCrop(row pgx.Row) (*models.Crop, error) {
	var c models.Crop
	err := row.Scan(&c.ID, &c.UserID, &c.FieldID, &c.Name, &c.Variety, &c.Status,
		&c.PlantingDate, &c.ExpectedHarvestDate, &c.ActualHarvestDate, &c.Area,
		&c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, userID uuid.UUID, req models.CreateCropRequest) (*models.Crop, error) {
	ctx, span := otel.Tracer("CropRepository").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	l := r.logger.With(zap.String("method", "Create"), zap.String("user_id", userID.String()))

	status := models.CropStatusPlanted
	if req.Status != nil {
		status = *req.Status
	}

	query := fmt.Sprintf(`INSERT INTO crops
		(user_id, field_id, name, variety, status, planting_date, expected_harvest_date, area, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`, cropColumns)
	crop, err := scanCrop(r.pgpool.QueryRow(ctx, query,
		userID, req.FieldID, req.Name, req.Variety, status,
		req.PlantingDate, req.ExpectedHarvestDate, req.Area, req.Notes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return nil, fmt.Errorf("crop already exists: %w", models.ErrConflict)
			}
			if pgErr.Code == "23503" {
				return nil, fmt.Errorf("referenced field does not exist: %w", models.ErrConflict)
			}
		}
		l.Error("Failed to insert crop", zap.Error(err))
		return nil, fmt.Errorf("database error creating crop: %w", err)
	}

	span.SetStatus(codes.Ok, "Crop created")
	return crop, nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, userID, cropID uuid.UUID) (*models.Crop, error) {
	ctx, span := otel.Tracer("CropRepository").Start(ctx, "GetByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM crops WHERE id = $1 AND user_id = $2`, cropColumns)
	crop, err := scanCrop(r.pgpool.QueryRow(ctx, query, cropID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "Not found")
			return nil, fmt.Errorf("crop not found: %w", models.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("database error fetching crop: %w", err)
	}

	span.SetStatus(codes.Ok, "Crop fetched")
	return crop, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]models.Crop, error) {
	ctx, span := otel.Tracer("CropRepository").Start(ctx, "List", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM crops WHERE user_id = $1 ORDER BY created_at DESC`, cropColumns)
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("database error listing crops: %w", err)
	}
	defer rows.Close()

	crops := []models.Crop{}
	for rows.Next() {
		crop, err := scanCrop(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Row scan failed")
			return nil, fmt.Errorf("error scanning crop row: %w", err)
		}
		crops = append(crops, *crop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating crop rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Crops listed")
	return crops, nil
}

// Update applies only the fields present in the request, building the SET
// clause with numbered placeholders.
func (r *RepositoryImpl) Update(ctx context.Context, userID, cropID uuid.UUID, req models.UpdateCropRequest) (*models.Crop, error) {
	ctx, span := otel.Tracer("CropRepository").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
	))
	defer span.End()

	l := r.logger.With(zap.String("method", "Update"), zap.String("crop_id", cropID.String()))

	setClauses := []string{}
	args := []interface{}{}
	argPos := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if req.FieldID != nil {
		addClause("field_id", *req.FieldID)
	}
	if req.Name != nil {
		addClause("name", *req.Name)
	}
	if req.Variety != nil {
		addClause("variety", *req.Variety)
	}
	if req.Status != nil {
		addClause("status", *req.Status)
	}
	if req.PlantingDate != nil {
		addClause("planting_date", *req.PlantingDate)
	}
	if req.ExpectedHarvestDate != nil {
		addClause("expected_harvest_date", *req.ExpectedHarvestDate)
	}
	if req.ActualHarvestDate != nil {
		addClause("actual_harvest_date", *req.ActualHarvestDate)
	}
	if req.Area != nil {
		addClause("area", *req.Area)
	}
	if req.Notes != nil {
		addClause("notes", *req.Notes)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, userID, cropID)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := fmt.Sprintf(`UPDATE crops SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argPos, argPos+1, cropColumns)
	args = append(args, cropID, userID)

	crop, err := scanCrop(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "Not found")
			return nil, fmt.Errorf("crop not found: %w", models.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database update failed")
		l.Error("Failed to update crop", zap.Error(err))
		return nil, fmt.Errorf("database error updating crop: %w", err)
	}

	span.SetStatus(codes.Ok, "Crop updated")
	return crop, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userID, cropID uuid.UUID) error {
	ctx, span := otel.Tracer("CropRepository").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM crops WHERE id = $1 AND user_id = $2`, cropID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database delete failed")
		return fmt.Errorf("database error deleting crop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Ok, "Not found")
		return fmt.Errorf("crop not found: %w", models.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "Crop deleted")
	return nil
}
