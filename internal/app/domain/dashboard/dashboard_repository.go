package dashboard

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
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
	GetTotalCounts(ctx context.Context, userID uuid.UUID) (models.TotalCounts, error)
	GetActiveCropsCount(ctx context.Context, userID uuid.UUID) (int64, error)
	GetTaskStats(ctx context.Context, userID uuid.UUID) (models.TaskStats, error)
	GetRecentTasks(ctx context.Context, userID uuid.UUID, limit int) ([]models.Task, error)
	GetWaterUsageStats(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.WaterUsageStats, error)
	GetFertilizerUsageStats(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.FertilizerUsageStats, error)
	GetYieldStats(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.YieldStats, error)
	GetPestDiseaseStats(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.PestDiseaseStats, error)
	GetFinancialSummary(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.FinancialSummary, error)
	GetRecentHarvestCount(ctx context.Context, userID uuid.UUID, days int) (int64, error)
	GetUpcomingHarvests(ctx context.Context, userID uuid.UUID, days int) ([]models.UpcomingHarvest, error)
	GetFirstFieldWithLocation(ctx context.Context, userID uuid.UUID) (*models.FieldLocation, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// dateFiltered applies the optional date window to a squirrel builder.
func dateFiltered(builder sq.SelectBuilder, column string, opts models.DashboardOptions) sq.SelectBuilder {
	if opts.StartDate != nil {
		builder = builder.Where(sq.GtOrEq{column: *opts.StartDate})
	}
	if opts.EndDate != nil {
		builder = builder.Where(sq.LtOrEq{column: *opts.EndDate})
	}
	return builder
}

func (r *RepositoryImpl) GetTotalCounts(ctx context.Context, userID uuid.UUID) (models.TotalCounts, error) {
	ctx, span := otel.Tracer("DashboardRepository").Start(ctx, "GetTotalCounts", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	var counts models.TotalCounts
	query := `SELECT
		(SELECT COUNT(*) FROM crops WHERE user_id = $1),
		(SELECT COUNT(*) FROM fields WHERE user_id = $1 AND is_active = TRUE),
		(SELECT COUNT(*) FROM tasks WHERE user_id = $1),
		(SELECT COUNT(*) FROM equipment WHERE user_id = $1)`
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(&counts.Crops, &counts.Fields, &counts.Tasks, &counts.Equipment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return counts, fmt.Errorf("database error fetching total counts: %w", err)
	}

	span.SetStatus(codes.Ok, "Counts fetched")
	return counts, nil
}

func (r *RepositoryImpl) GetActiveCropsCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM crops WHERE user_id = $1 AND status = ANY($2)`
	err := r.pgpool.QueryRow(ctx, query, userID, models.ActiveCropStatuses).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("database error counting active crops: %w", err)
	}
	return count, nil
}

func (r *RepositoryImpl) GetTaskStats(ctx context.Context, userID uuid.UUID) (models.TaskStats, error) {
	var stats models.TaskStats
	query := `SELECT
		COUNT(*) FILTER (WHERE status = 'PENDING'),
		COUNT(*) FILTER (WHERE status = 'PENDING' AND due_date IS NOT NULL AND due_date < NOW()),
		COUNT(*) FILTER (WHERE status = 'COMPLETED'),
		COUNT(*) FILTER (WHERE status = 'IN_PROGRESS')
		FROM tasks WHERE user_id = $1`
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(&stats.Pending, &stats.Overdue, &stats.Completed, &stats.InProgress)
	if err != nil {
		return stats, fmt.Errorf("database error fetching task stats: %w", err)
	}
	stats.Active = stats.Pending + stats.InProgress
	return stats, nil
}

func (r *RepositoryImpl) GetRecentTasks(ctx context.Context, userID uuid.UUID, limit int) ([]models.Task, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, user_id, crop_id, title, description, priority, status,
		due_date, completed_at, created_at, updated_at
		FROM tasks WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pgpool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("database error fetching recent tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.CropID, &t.Title, &t.Description, &t.Priority,
			&t.Status, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *RepositoryImpl) GetWaterUsageStats(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.WaterUsageStats, error) {
	var stats models.WaterUsageStats
	builder := dateFiltered(
		psql.Select("COALESCE(SUM(water_amount), 0)", "COUNT(*)").
			From("irrigation_logs").
			Where(sq.Eq{"user_id": userID}),
		"date", opts)
	query, args, err := builder.ToSql()
	if err != nil {
		return stats, fmt.Errorf("error building water stats query: %w", err)
	}
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(&stats.TotalWater, &stats.SessionCount); err != nil {
		return stats, fmt.Errorf("database error fetching water stats: %w", err)
	}
	if stats.SessionCount > 0 {
		stats.AveragePerSession = stats.TotalWater / float64(stats.SessionCount)
	}
	return stats, nil
}

func (r *RepositoryImpl) GetFertilizerUsageStats(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.FertilizerUsageStats, error) {
	stats := models.FertilizerUsageStats{TypeBreakdown: map[string]float64{}}
	builder := dateFiltered(
		psql.Select("fertilizer_type", "COALESCE(SUM(amount), 0)", "COUNT(*)").
			From("fertilizer_logs").
			Where(sq.Eq{"user_id": userID}).
			GroupBy("fertilizer_type"),
		"date", opts)
	query, args, err := builder.ToSql()
	if err != nil {
		return stats, fmt.Errorf("error building fertilizer stats query: %w", err)
	}
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("database error fetching fertilizer stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fertilizerType string
		var amount float64
		var count int64
		if err := rows.Scan(&fertilizerType, &amount, &count); err != nil {
			return stats, fmt.Errorf("error scanning fertilizer stats row: %w", err)
		}
		stats.TypeBreakdown[fertilizerType] = amount
		stats.TotalAmount += amount
		stats.ApplicationCount += count
	}
	return stats, rows.Err()
}

func (r *RepositoryImpl) GetYieldStats(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.YieldStats, error) {
	stats := models.YieldStats{CropBreakdown: map[string]float64{}}
	builder := dateFiltered(
		psql.Select("c.name", "COALESCE(SUM(h.quantity), 0)", "COUNT(*)").
			From("harvest_logs h").
			Join("crops c ON c.id = h.crop_id").
			Where(sq.Eq{"h.user_id": userID}).
			GroupBy("c.name"),
		"h.harvest_date", opts)
	query, args, err := builder.ToSql()
	if err != nil {
		return stats, fmt.Errorf("error building yield stats query: %w", err)
	}
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("database error fetching yield stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cropName string
		var quantity float64
		var count int64
		if err := rows.Scan(&cropName, &quantity, &count); err != nil {
			return stats, fmt.Errorf("error scanning yield stats row: %w", err)
		}
		stats.CropBreakdown[cropName] = quantity
		stats.TotalYield += quantity
		stats.HarvestCount += count
	}
	return stats, rows.Err()
}

// GetPestDiseaseStats always returns every severity key, zeroed when absent.
func (r *RepositoryImpl) GetPestDiseaseStats(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.PestDiseaseStats, error) {
	stats := models.PestDiseaseStats{
		SeverityBreakdown: map[string]int64{
			models.SeverityLow:    0,
			models.SeverityMedium: 0,
			models.SeverityHigh:   0,
		},
	}
	builder := dateFiltered(
		psql.Select("incident_type", "severity", "COUNT(*)").
			From("pest_disease_logs").
			Where(sq.Eq{"user_id": userID}).
			GroupBy("incident_type", "severity"),
		"date", opts)
	query, args, err := builder.ToSql()
	if err != nil {
		return stats, fmt.Errorf("error building pest/disease stats query: %w", err)
	}
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("database error fetching pest/disease stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var incidentType, severity string
		var count int64
		if err := rows.Scan(&incidentType, &severity, &count); err != nil {
			return stats, fmt.Errorf("error scanning pest/disease stats row: %w", err)
		}
		stats.TotalIncidents += count
		if incidentType == models.IncidentTypePest {
			stats.PestCount += count
		} else {
			stats.DiseaseCount += count
		}
		stats.SeverityBreakdown[severity] += count
	}
	return stats, rows.Err()
}

func (r *RepositoryImpl) GetFinancialSummary(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (models.FinancialSummary, error) {
	var summary models.FinancialSummary
	builder := dateFiltered(
		psql.Select(
			"COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'INCOME'), 0)",
			"COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'EXPENSE'), 0)",
			"COUNT(*)").
			From("financial_transactions").
			Where(sq.Eq{"user_id": userID}),
		"transaction_date", opts)
	query, args, err := builder.ToSql()
	if err != nil {
		return summary, fmt.Errorf("error building financial summary query: %w", err)
	}
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(
		&summary.TotalIncome, &summary.TotalExpenses, &summary.TransactionCount); err != nil {
		return summary, fmt.Errorf("database error fetching financial summary: %w", err)
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpenses
	return summary, nil
}

func (r *RepositoryImpl) GetRecentHarvestCount(ctx context.Context, userID uuid.UUID, days int) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM harvest_logs WHERE user_id = $1 AND harvest_date >= NOW() - make_interval(days => $2)`
	if err := r.pgpool.QueryRow(ctx, query, userID, days).Scan(&count); err != nil {
		return 0, fmt.Errorf("database error counting recent harvests: %w", err)
	}
	return count, nil
}

// GetUpcomingHarvests lists unharvested crops expected within the window.
func (r *RepositoryImpl) GetUpcomingHarvests(ctx context.Context, userID uuid.UUID, days int) ([]models.UpcomingHarvest, error) {
	query := `SELECT id, name, expected_harvest_date, status FROM crops
		WHERE user_id = $1
		AND status <> 'HARVESTED'
		AND expected_harvest_date BETWEEN NOW() AND NOW() + make_interval(days => $2)
		ORDER BY expected_harvest_date`
	rows, err := r.pgpool.Query(ctx, query, userID, days)
	if err != nil {
		return nil, fmt.Errorf("database error fetching upcoming harvests: %w", err)
	}
	defer rows.Close()

	harvests := []models.UpcomingHarvest{}
	for rows.Next() {
		var h models.UpcomingHarvest
		if err := rows.Scan(&h.CropID, &h.Name, &h.ExpectedHarvestDate, &h.Status); err != nil {
			return nil, fmt.Errorf("error scanning upcoming harvest row: %w", err)
		}
		harvests = append(harvests, h)
	}
	return harvests, rows.Err()
}

func (r *RepositoryImpl) GetFirstFieldWithLocation(ctx context.Context, userID uuid.UUID) (*models.FieldLocation, error) {
	var loc models.FieldLocation
	query := `SELECT id, name, latitude, longitude FROM fields
		WHERE user_id = $1 AND latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at LIMIT 1`
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(&loc.FieldID, &loc.Name, &loc.Latitude, &loc.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error fetching field location: %w", err)
	}
	return &loc, nil
}
