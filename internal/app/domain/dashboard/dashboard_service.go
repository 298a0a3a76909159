package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/farmflow/backend/internal/app/models"
)

const (
	recentTaskLimit       = 10
	recentHarvestDays     = 30
	upcomingHarvestDays   = 14
	defaultDateRangeDays  = 30
	maintenanceAlertAhead = 7
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetDashboardSummary(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (*models.DashboardSummary, error)
	GetDashboardAlerts(ctx context.Context, userID uuid.UUID) ([]models.DashboardAlert, error)
	GetQuickStats(ctx context.Context, userID uuid.UUID) (*models.QuickStats, error)
}

type ServiceImpl struct {
	logger  *zap.Logger
	repo    Repository
	printer *message.Printer
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		printer: message.NewPrinter(language.English),
	}
}

// ValidateDateRange reports whether the window is usable. Equal start and end
// dates are rejected, the window must be strictly positive.
func ValidateDateRange(start, end time.Time) bool {
	return start.Before(end)
}

// DefaultDateRange is the trailing window used when the caller supplies none.
func DefaultDateRange(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -defaultDateRangeDays), now
}

// CalculatePercentageChange returns the relative change from previous to
// current in percent. A zero previous value yields 100 when current is
// non-zero, 0 otherwise.
func CalculatePercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

// FormatCurrency renders an amount with thousands separators, e.g. "$1,234.56".
func (s *ServiceImpl) FormatCurrency(amount float64) string {
	return s.printer.Sprintf("$%.2f", amount)
}

// FormatLargeNumber renders a count with thousands separators.
func (s *ServiceImpl) FormatLargeNumber(n int64) string {
	return s.printer.Sprintf("%d", n)
}

// GetDashboardSummary aggregates every dashboard panel in one call. Repository
// reads fan out concurrently; the first failure cancels the rest.
func (s *ServiceImpl) GetDashboardSummary(ctx context.Context, userID uuid.UUID, opts models.DashboardOptions) (*models.DashboardSummary, error) {
	l := s.logger.With(zap.String("method", "GetDashboardSummary"), zap.String("user_id", userID.String()))

	if opts.StartDate != nil && opts.EndDate != nil && !ValidateDateRange(*opts.StartDate, *opts.EndDate) {
		return nil, fmt.Errorf("start date must be before end date: %w", models.ErrValidation)
	}
	if opts.StartDate == nil && opts.EndDate == nil {
		start, end := DefaultDateRange(time.Now())
		opts.StartDate, opts.EndDate = &start, &end
	}

	summary := &models.DashboardSummary{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		summary.Totals, err = s.repo.GetTotalCounts(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		summary.ActiveCrops, err = s.repo.GetActiveCropsCount(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		summary.TaskStats, err = s.repo.GetTaskStats(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		summary.WaterStats, err = s.repo.GetWaterUsageStats(gctx, userID, opts)
		return err
	})
	g.Go(func() error {
		var err error
		summary.FertilizerStats, err = s.repo.GetFertilizerUsageStats(gctx, userID, opts)
		return err
	})
	g.Go(func() error {
		var err error
		summary.YieldStats, err = s.repo.GetYieldStats(gctx, userID, opts)
		return err
	})
	g.Go(func() error {
		var err error
		summary.PestDiseaseStats, err = s.repo.GetPestDiseaseStats(gctx, userID, opts)
		return err
	})
	g.Go(func() error {
		var err error
		summary.FinancialSummary, err = s.repo.GetFinancialSummary(gctx, userID, opts)
		return err
	})
	g.Go(func() error {
		var err error
		summary.RecentTasks, err = s.repo.GetRecentTasks(gctx, userID, recentTaskLimit)
		return err
	})
	g.Go(func() error {
		var err error
		summary.RecentHarvestCount, err = s.repo.GetRecentHarvestCount(gctx, userID, recentHarvestDays)
		return err
	})
	g.Go(func() error {
		var err error
		summary.UpcomingHarvests, err = s.repo.GetUpcomingHarvests(gctx, userID, upcomingHarvestDays)
		return err
	})
	g.Go(func() error {
		var err error
		summary.FieldLocation, err = s.repo.GetFirstFieldWithLocation(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		l.Error("Dashboard aggregation failed", zap.Error(err))
		return nil, err
	}

	summary.ProfitMargin = profitMargin(summary.FinancialSummary)
	summary.GeneratedAt = time.Now().UTC()

	if err := validateSummary(summary); err != nil {
		l.Error("Dashboard summary failed validation", zap.Error(err))
		return nil, err
	}

	l.Debug("Dashboard summary assembled",
		zap.Int64("crops", summary.Totals.Crops),
		zap.Int64("tasks", summary.Totals.Tasks),
	)
	return summary, nil
}

// validateSummary guards the assembled response before it leaves the service.
// Aggregates are counts and sums of non-negative inputs, so a negative value
// means a broken query rather than bad user data.
func validateSummary(summary *models.DashboardSummary) error {
	counts := map[string]int64{
		"crops":           summary.Totals.Crops,
		"fields":          summary.Totals.Fields,
		"equipment":       summary.Totals.Equipment,
		"tasks":           summary.Totals.Tasks,
		"activeCrops":     summary.ActiveCrops,
		"recentHarvests":  summary.RecentHarvestCount,
		"pendingTasks":    summary.TaskStats.Pending,
		"completedTasks":  summary.TaskStats.Completed,
		"overdueTasks":    summary.TaskStats.Overdue,
		"inProgressTasks": summary.TaskStats.InProgress,
	}
	for name, v := range counts {
		if v < 0 {
			return fmt.Errorf("negative %s count %d: %w", name, v, models.ErrDataValidation)
		}
	}
	if summary.WaterStats.TotalWater < 0 || summary.FertilizerStats.TotalAmount < 0 {
		return fmt.Errorf("negative usage total: %w", models.ErrDataValidation)
	}
	return nil
}

// profitMargin is balance over income in percent, rounded to two decimals.
// Zero income means no margin to report.
func profitMargin(fin models.FinancialSummary) float64 {
	if fin.TotalIncome == 0 {
		return 0
	}
	margin := (fin.TotalIncome - fin.TotalExpenses) / fin.TotalIncome * 100
	return math.Round(margin*100) / 100
}

// GetDashboardAlerts derives attention items from task and harvest state.
func (s *ServiceImpl) GetDashboardAlerts(ctx context.Context, userID uuid.UUID) ([]models.DashboardAlert, error) {
	var (
		taskStats models.TaskStats
		pestStats models.PestDiseaseStats
		harvests  []models.UpcomingHarvest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		taskStats, err = s.repo.GetTaskStats(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		pestStats, err = s.repo.GetPestDiseaseStats(gctx, userID, models.DashboardOptions{})
		return err
	})
	g.Go(func() error {
		var err error
		harvests, err = s.repo.GetUpcomingHarvests(gctx, userID, maintenanceAlertAhead)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	alerts := []models.DashboardAlert{}
	if high := pestStats.SeverityBreakdown[models.SeverityHigh]; high > 0 {
		alerts = append(alerts, models.DashboardAlert{
			Type:    "error",
			Title:   "High Severity Issues",
			Message: s.printer.Sprintf("You have %d high severity pest or disease incidents requiring immediate action.", high),
		})
	}
	if taskStats.Overdue > 0 {
		alerts = append(alerts, models.DashboardAlert{
			Type:    "warning",
			Title:   "Overdue Tasks",
			Message: s.printer.Sprintf("You have %d overdue tasks that need attention.", taskStats.Overdue),
		})
	}
	for _, h := range harvests {
		alerts = append(alerts, models.DashboardAlert{
			Type:    "info",
			Title:   "Harvest Approaching",
			Message: fmt.Sprintf("%s is expected to be ready on %s.", h.Name, h.ExpectedHarvestDate.Format("Jan 2")),
		})
	}
	return alerts, nil
}

// GetQuickStats returns the compact header numbers.
func (s *ServiceImpl) GetQuickStats(ctx context.Context, userID uuid.UUID) (*models.QuickStats, error) {
	stats := &models.QuickStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.ActiveCrops, err = s.repo.GetActiveCropsCount(gctx, userID)
		return err
	})
	g.Go(func() error {
		taskStats, err := s.repo.GetTaskStats(gctx, userID)
		if err != nil {
			return err
		}
		stats.PendingTasks = taskStats.Pending
		return nil
	})
	g.Go(func() error {
		var err error
		stats.RecentHarvestCount, err = s.repo.GetRecentHarvestCount(gctx, userID, recentHarvestDays)
		return err
	})
	g.Go(func() error {
		fin, err := s.repo.GetFinancialSummary(gctx, userID, models.DashboardOptions{})
		if err != nil {
			return err
		}
		stats.Balance = fin.Balance
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
