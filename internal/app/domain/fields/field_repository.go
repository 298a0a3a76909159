package fields

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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
	Create(ctx context.Context, userID uuid.UUID, req models.CreateFieldRequest) (*models.Field, error)
	GetByID(ctx context.Context, userID, fieldID uuid.UUID) (*models.Field, error)
	List(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Field, error)
	Update(ctx context.Context, userID, fieldID uuid.UUID, req models.UpdateFieldRequest) (*models.Field, error)
	Delete(ctx context.Context, userID, fieldID uuid.UUID) error
	Dependencies(ctx context.Context, userID, fieldID uuid.UUID) (models.FieldDependencies, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

const fieldColumns = `id, user_id, name, area, soil_type, latitude, longitude, address,
	is_active, created_at, updated_at`

func scanField(row pgx.Row) (*models.Field, error) {
	var f models.Field
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Area, &f.SoilType, &f.Latitude,
		&f.Longitude, &f.Address, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, userID uuid.UUID, req models.CreateFieldRequest) (*models.Field, error) {
	ctx, span := otel.Tracer("FieldRepository").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	query := fmt.Sprintf(`INSERT INTO fields (user_id, name, area, soil_type, latitude, longitude, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING %s`, fieldColumns)
	field, err := scanField(r.pgpool.QueryRow(ctx, query,
		userID, req.Name, req.Area, req.SoilType, req.Latitude, req.Longitude, req.Address))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		r.logger.Error("Failed to insert field", zap.Error(err))
		return nil, fmt.Errorf("database error creating field: %w", err)
	}

	span.SetStatus(codes.Ok, "Field created")
	return field, nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, userID, fieldID uuid.UUID) (*models.Field, error) {
	query := fmt.Sprintf(`SELECT %s FROM fields WHERE id = $1 AND user_id = $2`, fieldColumns)
	field, err := scanField(r.pgpool.QueryRow(ctx, query, fieldID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("field not found: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching field: %w", err)
	}
	return field, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Field, error) {
	ctx, span := otel.Tracer("FieldRepository").Start(ctx, "List", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM fields WHERE user_id = $1`, fieldColumns)
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("database error listing fields: %w", err)
	}
	defer rows.Close()

	fields := []models.Field{}
	for rows.Next() {
		field, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning field row: %w", err)
		}
		fields = append(fields, *field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating field rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Fields listed")
	return fields, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userID, fieldID uuid.UUID, req models.UpdateFieldRequest) (*models.Field, error) {
	setClauses := []string{}
	args := []interface{}{}
	argPos := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if req.Name != nil {
		addClause("name", *req.Name)
	}
	if req.Area != nil {
		addClause("area", *req.Area)
	}
	if req.SoilType != nil {
		addClause("soil_type", *req.SoilType)
	}
	if req.Latitude != nil {
		addClause("latitude", *req.Latitude)
	}
	if req.Longitude != nil {
		addClause("longitude", *req.Longitude)
	}
	if req.Address != nil {
		addClause("address", *req.Address)
	}
	if req.IsActive != nil {
		addClause("is_active", *req.IsActive)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, userID, fieldID)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := fmt.Sprintf(`UPDATE fields SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argPos, argPos+1, fieldColumns)
	args = append(args, fieldID, userID)

	field, err := scanField(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("field not found: %w", models.ErrNotFound)
		}
		r.logger.Error("Failed to update field", zap.Error(err), zap.String("field_id", fieldID.String()))
		return nil, fmt.Errorf("database error updating field: %w", err)
	}
	return field, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userID, fieldID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM fields WHERE id = $1 AND user_id = $2`, fieldID, userID)
	if err != nil {
		return fmt.Errorf("database error deleting field: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("field not found: %w", models.ErrNotFound)
	}
	return nil
}

// Dependencies counts crops and tasks still referencing the field.
func (r *RepositoryImpl) Dependencies(ctx context.Context, userID, fieldID uuid.UUID) (models.FieldDependencies, error) {
	var deps models.FieldDependencies
	query := `SELECT
		(SELECT COUNT(*) FROM crops WHERE field_id = $1 AND user_id = $2),
		(SELECT COUNT(*) FROM tasks t JOIN crops c ON t.crop_id = c.id WHERE c.field_id = $1 AND t.user_id = $2)`
	err := r.pgpool.QueryRow(ctx, query, fieldID, userID).Scan(&deps.Crops, &deps.Tasks)
	if err != nil {
		return deps, fmt.Errorf("database error counting field dependencies: %w", err)
	}
	return deps, nil
}
