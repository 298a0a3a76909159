package equipment

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
	Create(ctx context.Context, userID uuid.UUID, req models.CreateEquipmentRequest) (*models.Equipment, error)
	GetByID(ctx context.Context, userID, equipmentID uuid.UUID) (*models.Equipment, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Equipment, error)
	Update(ctx context.Context, userID, equipmentID uuid.UUID, req models.UpdateEquipmentRequest) (*models.Equipment, error)
	Delete(ctx context.Context, userID, equipmentID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

const equipmentColumns = `id, user_id, name, equipment_type, status, purchase_date,
	last_maintenance_date, next_maintenance_date, notes, created_at, updated_at`

func scanEquipment(row pgx.Row) (*models.Equipment, error) {
	var e models.Equipment
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.EquipmentType, &e.Status,
		&e.PurchaseDate, &e.LastMaintenanceDate, &e.NextMaintenanceDate,
		&e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, userID uuid.UUID, req models.CreateEquipmentRequest) (*models.Equipment, error) {
	ctx, span := otel.Tracer("EquipmentRepository").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	status := models.EquipmentStatusOperational
	if req.Status != nil {
		status = *req.Status
	}

	query := fmt.Sprintf(`INSERT INTO equipment
		(user_id, name, equipment_type, status, purchase_date, last_maintenance_date, next_maintenance_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING %s`, equipmentColumns)
	eq, err := scanEquipment(r.pgpool.QueryRow(ctx, query,
		userID, req.Name, req.EquipmentType, status,
		req.PurchaseDate, req.LastMaintenanceDate, req.NextMaintenanceDate, req.Notes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		r.logger.Error("Failed to insert equipment", zap.Error(err))
		return nil, fmt.Errorf("database error creating equipment: %w", err)
	}

	span.SetStatus(codes.Ok, "Equipment created")
	return eq, nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, userID, equipmentID uuid.UUID) (*models.Equipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM equipment WHERE id = $1 AND user_id = $2`, equipmentColumns)
	eq, err := scanEquipment(r.pgpool.QueryRow(ctx, query, equipmentID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("equipment not found: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching equipment: %w", err)
	}
	return eq, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]models.Equipment, error) {
	ctx, span := otel.Tracer("EquipmentRepository").Start(ctx, "List", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM equipment WHERE user_id = $1 ORDER BY created_at DESC`, equipmentColumns)
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("database error listing equipment: %w", err)
	}
	defer rows.Close()

	items := []models.Equipment{}
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning equipment row: %w", err)
		}
		items = append(items, *eq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating equipment rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Equipment listed")
	return items, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userID, equipmentID uuid.UUID, req models.UpdateEquipmentRequest) (*models.Equipment, error) {
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
	if req.EquipmentType != nil {
		addClause("equipment_type", *req.EquipmentType)
	}
	if req.Status != nil {
		addClause("status", *req.Status)
	}
	if req.PurchaseDate != nil {
		addClause("purchase_date", *req.PurchaseDate)
	}
	if req.LastMaintenanceDate != nil {
		addClause("last_maintenance_date", *req.LastMaintenanceDate)
	}
	if req.NextMaintenanceDate != nil {
		addClause("next_maintenance_date", *req.NextMaintenanceDate)
	}
	if req.Notes != nil {
		addClause("notes", *req.Notes)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, userID, equipmentID)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := fmt.Sprintf(`UPDATE equipment SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argPos, argPos+1, equipmentColumns)
	args = append(args, equipmentID, userID)

	eq, err := scanEquipment(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("equipment not found: %w", models.ErrNotFound)
		}
		r.logger.Error("Failed to update equipment", zap.Error(err))
		return nil, fmt.Errorf("database error updating equipment: %w", err)
	}
	return eq, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userID, equipmentID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM equipment WHERE id = $1 AND user_id = $2`, equipmentID, userID)
	if err != nil {
		return fmt.Errorf("database error deleting equipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("equipment not found: %w", models.ErrNotFound)
	}
	return nil
}
