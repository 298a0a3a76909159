package insights

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/farmflow/backend/internal/app/models"
	"github.com/farmflow/backend/internal/app/observability/metrics"
)

// CropLister and ActivityLister are the slices of the crop and activity
// services the generators need.
type CropLister interface {
	ListCrops(ctx context.Context, userID uuid.UUID) ([]models.Crop, error)
}

type ActivityLister interface {
	RecentActivities(ctx context.Context, userID uuid.UUID, limit int) ([]models.Activity, error)
}

// WeatherProvider fetches conditions for a coordinate pair.
type WeatherProvider interface {
	GetReport(ctx context.Context, latitude, longitude float64) (*models.WeatherReport, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	FarmInsights(ctx context.Context, userID uuid.UUID) ([]models.Insight, error)
	WeatherInsights(ctx context.Context, userID uuid.UUID, latitude, longitude float64) ([]models.Insight, *models.WeatherReport, error)
}

type ServiceImpl struct {
	logger     *zap.Logger
	crops      CropLister
	activities ActivityLister
	weather    WeatherProvider
}

func NewService(crops CropLister, activities ActivityLister, weather WeatherProvider, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, crops: crops, activities: activities, weather: weather}
}

const activityFetchLimit = 200

// FarmInsights loads the user's crops and activity feed in parallel and runs
// the farm generator over them.
func (s *ServiceImpl) FarmInsights(ctx context.Context, userID uuid.UUID) ([]models.Insight, error) {
	var (
		crops      []models.Crop
		activities []models.Activity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		crops, err = s.crops.ListCrops(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = s.activities.RecentActivities(gctx, userID, activityFetchLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	insights := GenerateFarmInsights(time.Now(), crops, activities)
	metrics.Get().RecordInsights(ctx, "farm", len(insights))
	s.logger.Info("Farm insights generated",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(insights)),
	)
	return insights, nil
}

// WeatherInsights fetches weather, crops and activities concurrently, then
// runs the weather generator. The report is returned alongside the insights
// so the handler can include current conditions in the response.
func (s *ServiceImpl) WeatherInsights(ctx context.Context, userID uuid.UUID, latitude, longitude float64) ([]models.Insight, *models.WeatherReport, error) {
	var (
		report     *models.WeatherReport
		crops      []models.Crop
		activities []models.Activity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.weather.GetReport(gctx, latitude, longitude)
		return err
	})
	g.Go(func() error {
		var err error
		crops, err = s.crops.ListCrops(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = s.activities.RecentActivities(gctx, userID, activityFetchLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	insights := GenerateWeatherInsights(time.Now(), *report, crops, activities)
	metrics.Get().RecordInsights(ctx, "weather", len(insights))
	s.logger.Info("Weather insights generated",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(insights)),
	)
	return insights, report, nil
}
