package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

type stubRepo struct {
	pestStats models.PestDiseaseStats
	financial models.FinancialSummary
	taskStats models.TaskStats
}

func (s *stubRepo) GetTotalCounts(context.Context, uuid.UUID) (models.TotalCounts, error) {
	return models.TotalCounts{}, nil
}

func (s *stubRepo) GetActiveCropsCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (s *stubRepo) GetTaskStats(context.Context, uuid.UUID) (models.TaskStats, error) {
	return s.taskStats, nil
}

func (s *stubRepo) GetRecentTasks(context.Context, uuid.UUID, int) ([]models.Task, error) {
	return []models.Task{}, nil
}

func (s *stubRepo) GetWaterUsageStats(context.Context, uuid.UUID, models.DashboardOptions) (models.WaterUsageStats, error) {
	return models.WaterUsageStats{}, nil
}

func (s *stubRepo) GetFertilizerUsageStats(context.Context, uuid.UUID, models.DashboardOptions) (models.FertilizerUsageStats, error) {
	return models.FertilizerUsageStats{TypeBreakdown: map[string]float64{}}, nil
}

func (s *stubRepo) GetYieldStats(context.Context, uuid.UUID, models.DashboardOptions) (models.YieldStats, error) {
	return models.YieldStats{CropBreakdown: map[string]float64{}}, nil
}

func (s *stubRepo) GetPestDiseaseStats(context.Context, uuid.UUID, models.DashboardOptions) (models.PestDiseaseStats, error) {
	return s.pestStats, nil
}

func (s *stubRepo) GetFinancialSummary(context.Context, uuid.UUID, models.DashboardOptions) (models.FinancialSummary, error) {
	return s.financial, nil
}

func (s *stubRepo) GetRecentHarvestCount(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (s *stubRepo) GetUpcomingHarvests(context.Context, uuid.UUID, int) ([]models.UpcomingHarvest, error) {
	return []models.UpcomingHarvest{}, nil
}

func (s *stubRepo) GetFirstFieldWithLocation(context.Context, uuid.UUID) (*models.FieldLocation, error) {
	return nil, nil
}

func emptyPestStats() models.PestDiseaseStats {
	return models.PestDiseaseStats{
		SeverityBreakdown: map[string]int64{
			models.SeverityLow:    0,
			models.SeverityMedium: 0,
			models.SeverityHigh:   0,
		},
	}
}

func TestValidateDateRange(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, ValidateDateRange(base, base.AddDate(0, 0, 1)))
	assert.False(t, ValidateDateRange(base, base), "equal dates are not a usable window")
	assert.False(t, ValidateDateRange(base.AddDate(0, 0, 1), base))
}

func TestDefaultDateRange(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	start, end := DefaultDateRange(now)
	assert.Equal(t, now, end)
	assert.Equal(t, now.AddDate(0, 0, -30), start)
}

func TestCalculatePercentageChange(t *testing.T) {
	assert.Equal(t, 0.0, CalculatePercentageChange(0, 0))
	assert.Equal(t, 100.0, CalculatePercentageChange(50, 0))
	assert.Equal(t, 50.0, CalculatePercentageChange(150, 100))
	assert.Equal(t, -25.0, CalculatePercentageChange(75, 100))
}

func TestProfitMargin(t *testing.T) {
	assert.Equal(t, 0.0, profitMargin(models.FinancialSummary{}))
	assert.Equal(t, 50.0, profitMargin(models.FinancialSummary{TotalIncome: 200, TotalExpenses: 100}))
	assert.Equal(t, 33.33, profitMargin(models.FinancialSummary{TotalIncome: 300, TotalExpenses: 200}))
	assert.Equal(t, -100.0, profitMargin(models.FinancialSummary{TotalIncome: 100, TotalExpenses: 200}))
}

func TestGetDashboardSummary_RejectsInvertedRange(t *testing.T) {
	svc := NewService(&stubRepo{pestStats: emptyPestStats()}, zap.NewNop())
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := start

	_, err := svc.GetDashboardSummary(context.Background(), uuid.New(), models.DashboardOptions{
		StartDate: &start,
		EndDate:   &end,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGetDashboardSummary_EmptyFarmHasNonNilCollections(t *testing.T) {
	svc := NewService(&stubRepo{pestStats: emptyPestStats()}, zap.NewNop())

	summary, err := svc.GetDashboardSummary(context.Background(), uuid.New(), models.DashboardOptions{})

	require.NoError(t, err)
	assert.NotNil(t, summary.RecentTasks)
	assert.NotNil(t, summary.UpcomingHarvests)
	assert.NotNil(t, summary.FertilizerStats.TypeBreakdown)
	assert.NotNil(t, summary.YieldStats.CropBreakdown)
	require.NotNil(t, summary.PestDiseaseStats.SeverityBreakdown)
	assert.Contains(t, summary.PestDiseaseStats.SeverityBreakdown, models.SeverityLow)
	assert.Contains(t, summary.PestDiseaseStats.SeverityBreakdown, models.SeverityMedium)
	assert.Contains(t, summary.PestDiseaseStats.SeverityBreakdown, models.SeverityHigh)
	assert.Nil(t, summary.FieldLocation)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestGetDashboardSummary_ProfitMarginDerived(t *testing.T) {
	svc := NewService(&stubRepo{
		pestStats: emptyPestStats(),
		financial: models.FinancialSummary{TotalIncome: 400, TotalExpenses: 100},
	}, zap.NewNop())

	summary, err := svc.GetDashboardSummary(context.Background(), uuid.New(), models.DashboardOptions{})

	require.NoError(t, err)
	assert.Equal(t, 75.0, summary.ProfitMargin)
}

func TestGetDashboardSummary_RejectsBrokenAggregates(t *testing.T) {
	svc := NewService(&stubRepo{
		pestStats: emptyPestStats(),
		taskStats: models.TaskStats{Pending: -4},
	}, zap.NewNop())

	_, err := svc.GetDashboardSummary(context.Background(), uuid.New(), models.DashboardOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataValidation)
}

func TestGetDashboardAlerts_HighSeverityIncidents(t *testing.T) {
	stats := emptyPestStats()
	stats.SeverityBreakdown[models.SeverityHigh] = 3
	svc := NewService(&stubRepo{pestStats: stats}, zap.NewNop())

	alerts, err := svc.GetDashboardAlerts(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "error", alerts[0].Type)
	assert.Equal(t, "High Severity Issues", alerts[0].Title)
	assert.Contains(t, alerts[0].Message, "3 high severity")
}

func TestGetDashboardAlerts_QuietFarm(t *testing.T) {
	svc := NewService(&stubRepo{pestStats: emptyPestStats()}, zap.NewNop())

	alerts, err := svc.GetDashboardAlerts(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.NotNil(t, alerts)
}

func TestFormatHelpers(t *testing.T) {
	svc := NewService(&stubRepo{}, zap.NewNop())
	assert.Equal(t, "$1,234.56", svc.FormatCurrency(1234.56))
	assert.Equal(t, "1,000,000", svc.FormatLargeNumber(1000000))
}
