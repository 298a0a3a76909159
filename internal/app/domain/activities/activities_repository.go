package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
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
	CreateIrrigationLog(ctx context.Context, userID uuid.UUID, req models.CreateIrrigationLogRequest) (*models.IrrigationLog, error)
	CreateFertilizerLog(ctx context.Context, userID uuid.UUID, req models.CreateFertilizerLogRequest) (*models.FertilizerLog, error)
	CreatePestDiseaseLog(ctx context.Context, userID uuid.UUID, req models.CreatePestDiseaseLogRequest) (*models.PestDiseaseLog, error)
	CreateHarvestLog(ctx context.Context, userID uuid.UUID, req models.CreateHarvestLogRequest) (*models.HarvestLog, error)
	ListIrrigationLogs(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.IrrigationLog, error)
	ListFertilizerLogs(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.FertilizerLog, error)
	ListPestDiseaseLogs(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.PestDiseaseLog, error)
	ListHarvestLogs(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.HarvestLog, error)
	ListRecentActivities(ctx context.Context, userID uuid.UUID, limit int) ([]models.Activity, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

func orNow(t *time.Time) time.Time {
	if t == nil {
		return time.Now()
	}
	return *t
}

func wrapLogInsertErr(kind string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("referenced crop does not exist: %w", models.ErrConflict)
	}
	return fmt.Errorf("database error creating %s log: %w", kind, err)
}

func (r *RepositoryImpl) CreateIrrigationLog(ctx context.Context, userID uuid.UUID, req models.CreateIrrigationLogRequest) (*models.IrrigationLog, error) {
	ctx, span := otel.Tracer("ActivityRepository").Start(ctx, "CreateIrrigationLog", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	var log models.IrrigationLog
	query := `INSERT INTO irrigation_logs (user_id, crop_id, water_amount, duration, method, cost, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, crop_id, water_amount, duration, method, cost, date, notes, created_at`
	err := r.pgpool.QueryRow(ctx, query,
		userID, req.CropID, req.WaterAmount, req.Duration, req.Method, req.Cost, orNow(req.Date), req.Notes).
		Scan(&log.ID, &log.UserID, &log.CropID, &log.WaterAmount, &log.Duration,
			&log.Method, &log.Cost, &log.Date, &log.Notes, &log.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		return nil, wrapLogInsertErr("irrigation", err)
	}

	span.SetStatus(codes.Ok, "Irrigation log created")
	return &log, nil
}

func (r *RepositoryImpl) CreateFertilizerLog(ctx context.Context, userID uuid.UUID, req models.CreateFertilizerLogRequest) (*models.FertilizerLog, error) {
	ctx, span := otel.Tracer("ActivityRepository").Start(ctx, "CreateFertilizerLog", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	var log models.FertilizerLog
	query := `INSERT INTO fertilizer_logs (user_id, crop_id, fertilizer_type, amount, cost, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, crop_id, fertilizer_type, amount, cost, date, notes, created_at`
	err := r.pgpool.QueryRow(ctx, query,
		userID, req.CropID, req.FertilizerType, req.Amount, req.Cost, orNow(req.Date), req.Notes).
		Scan(&log.ID, &log.UserID, &log.CropID, &log.FertilizerType, &log.Amount,
			&log.Cost, &log.Date, &log.Notes, &log.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		return nil, wrapLogInsertErr("fertilizer", err)
	}

	span.SetStatus(codes.Ok, "Fertilizer log created")
	return &log, nil
}

func (r *RepositoryImpl) CreatePestDiseaseLog(ctx context.Context, userID uuid.UUID, req models.CreatePestDiseaseLogRequest) (*models.PestDiseaseLog, error) {
	ctx, span := otel.Tracer("ActivityRepository").Start(ctx, "CreatePestDiseaseLog", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	var log models.PestDiseaseLog
	query := `INSERT INTO pest_disease_logs (user_id, crop_id, incident_type, name, severity, treatment, cost, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, user_id, crop_id, incident_type, name, severity, treatment, cost, date, notes, created_at`
	err := r.pgpool.QueryRow(ctx, query,
		userID, req.CropID, req.IncidentType, req.Name, req.Severity, req.Treatment, req.Cost, orNow(req.Date), req.Notes).
		Scan(&log.ID, &log.UserID, &log.CropID, &log.IncidentType, &log.Name, &log.Severity,
			&log.Treatment, &log.Cost, &log.Date, &log.Notes, &log.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		return nil, wrapLogInsertErr("pest/disease", err)
	}

	span.SetStatus(codes.Ok, "Pest/disease log created")
	return &log, nil
}

func (r *RepositoryImpl) CreateHarvestLog(ctx context.Context, userID uuid.UUID, req models.CreateHarvestLogRequest) (*models.HarvestLog, error) {
	ctx, span := otel.Tracer("ActivityRepository").Start(ctx, "CreateHarvestLog", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	var log models.HarvestLog
	query := `INSERT INTO harvest_logs (user_id, crop_id, quantity, unit, quality, harvest_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, crop_id, quantity, unit, quality, harvest_date, notes, created_at`
	err := r.pgpool.QueryRow(ctx, query,
		userID, req.CropID, req.Quantity, req.Unit, req.Quality, orNow(req.HarvestDate), req.Notes).
		Scan(&log.ID, &log.UserID, &log.CropID, &log.Quantity, &log.Unit,
			&log.Quality, &log.HarvestDate, &log.Notes, &log.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		return nil, wrapLogInsertErr("harvest", err)
	}

	span.SetStatus(codes.Ok, "Harvest log created")
	return &log, nil
}

func (r *RepositoryImpl) ListIrrigationLogs(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.IrrigationLog, error) {
	query := `SELECT id, user_id, crop_id, water_amount, duration, method, cost, date, notes, created_at
		FROM irrigation_logs WHERE user_id = $1`
	args := []interface{}{userID}
	if since != nil {
		query += ` AND date >= $2`
		args = append(args, *since)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error listing irrigation logs: %w", err)
	}
	defer rows.Close()

	logs := []models.IrrigationLog{}
	for rows.Next() {
		var log models.IrrigationLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.CropID, &log.WaterAmount, &log.Duration,
			&log.Method, &log.Cost, &log.Date, &log.Notes, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning irrigation log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (r *RepositoryImpl) ListFertilizerLogs(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.FertilizerLog, error) {
	query := `SELECT id, user_id, crop_id, fertilizer_type, amount, cost, date, notes, created_at
		FROM fertilizer_logs WHERE user_id = $1`
	args := []interface{}{userID}
	if since != nil {
		query += ` AND date >= $2`
		args = append(args, *since)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error listing fertilizer logs: %w", err)
	}
	defer rows.Close()

	logs := []models.FertilizerLog{}
	for rows.Next() {
		var log models.FertilizerLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.CropID, &log.FertilizerType, &log.Amount,
			&log.Cost, &log.Date, &log.Notes, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning fertilizer log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (r *RepositoryImpl) ListPestDiseaseLogs(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.PestDiseaseLog, error) {
	query := `SELECT id, user_id, crop_id, incident_type, name, severity, treatment, cost, date, notes, created_at
		FROM pest_disease_logs WHERE user_id = $1`
	args := []interface{}{userID}
	if since != nil {
		query += ` AND date >= $2`
		args = append(args, *since)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error listing pest/disease logs: %w", err)
	}
	defer rows.Close()

	logs := []models.PestDiseaseLog{}
	for rows.Next() {
		var log models.PestDiseaseLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.CropID, &log.IncidentType, &log.Name, &log.Severity,
			&log.Treatment, &log.Cost, &log.Date, &log.Notes, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning pest/disease log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (r *RepositoryImpl) ListHarvestLogs(ctx context.Context, userID uuid.UUID, since *time.Time) ([]models.HarvestLog, error) {
	query := `SELECT id, user_id, crop_id, quantity, unit, quality, harvest_date, notes, created_at
		FROM harvest_logs WHERE user_id = $1`
	args := []interface{}{userID}
	if since != nil {
		query += ` AND harvest_date >= $2`
		args = append(args, *since)
	}
	query += ` ORDER BY harvest_date DESC`

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error listing harvest logs: %w", err)
	}
	defer rows.Close()

	logs := []models.HarvestLog{}
	for rows.Next() {
		var log models.HarvestLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.CropID, &log.Quantity, &log.Unit,
			&log.Quality, &log.HarvestDate, &log.Notes, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning harvest log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// ListRecentActivities flattens the four log tables into one recency ordered
// feed. This is the input shape the insight generators consume.
func (r *RepositoryImpl) ListRecentActivities(ctx context.Context, userID uuid.UUID, limit int) ([]models.Activity, error) {
	ctx, span := otel.Tracer("ActivityRepository").Start(ctx, "ListRecentActivities", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, 'IRRIGATION' AS type, crop_id, cost, date, created_at FROM irrigation_logs WHERE user_id = $1
		UNION ALL
		SELECT id, 'FERTILIZER', crop_id, cost, date, created_at FROM fertilizer_logs WHERE user_id = $1
		UNION ALL
		SELECT id, 'PEST_DISEASE', crop_id, cost, date, created_at FROM pest_disease_logs WHERE user_id = $1
		UNION ALL
		SELECT id, 'HARVEST', crop_id, NULL::double precision, harvest_date, created_at FROM harvest_logs WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2`
	rows, err := r.pgpool.Query(ctx, query, userID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("database error listing activities: %w", err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		var date time.Time
		if err := rows.Scan(&a.ID, &a.Type, &a.CropID, &a.Cost, &date, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning activity row: %w", err)
		}
		// The feed orders by activity date, not insertion time.
		a.CreatedAt = date
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Activities listed")
	return activities, nil
}
