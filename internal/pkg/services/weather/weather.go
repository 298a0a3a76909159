// Package weather fetches conditions from OpenWeatherMap with caching and
// retries. When no API key is configured it serves representative sample
// data so the rest of the application keeps working in development.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
	"github.com/farmflow/backend/internal/app/observability/metrics"
	"github.com/farmflow/backend/internal/pkg/retry"
)

const cacheCleanupInterval = 10 * time.Minute

type Service struct {
	logger  *zap.Logger
	client  *retry.Client
	cache   *cache.Cache
	apiKey  string
	baseURL string
}

func NewService(apiKey, baseURL string, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		logger:  logger,
		client:  retry.NewClient(),
		cache:   cache.New(cacheTTL, cacheCleanupInterval),
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// GetReport returns current conditions, a daily forecast and active alerts
// for the coordinates. Responses are cached per rounded coordinate pair.
func (s *Service) GetReport(ctx context.Context, latitude, longitude float64) (*models.WeatherReport, error) {
	key := fmt.Sprintf("report:%.2f:%.2f", latitude, longitude)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.WeatherReport), nil
	}

	if s.apiKey == "" {
		s.logger.Debug("Weather API key not configured, serving sample data")
		report := sampleReport(time.Now().UTC())
		s.cache.SetDefault(key, report)
		return report, nil
	}

	current, err := s.fetchCurrent(ctx, latitude, longitude)
	if err != nil {
		return nil, errors.Wrap(err, "fetching current weather")
	}
	forecast, err := s.fetchForecast(ctx, latitude, longitude)
	if err != nil {
		return nil, errors.Wrap(err, "fetching weather forecast")
	}

	report := &models.WeatherReport{
		Current:  *current,
		Forecast: forecast,
		Alerts:   deriveAlerts(*current, forecast),
	}
	s.cache.SetDefault(key, report)
	return report, nil
}

// currentResponse mirrors the OpenWeatherMap current weather payload.
type currentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Visibility float64 `json:"visibility"`
	Dt         int64   `json:"dt"`
}

func (s *Service) fetchCurrent(ctx context.Context, latitude, longitude float64) (*models.WeatherData, error) {
	endpoint := fmt.Sprintf("%s/weather?%s", s.baseURL, s.query(latitude, longitude))
	start := time.Now()
	body, err := s.client.Get(ctx, endpoint)
	metrics.Get().RecordWeatherFetch(ctx, "weather", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	var resp currentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decoding current weather response")
	}

	condition := "Clear"
	if len(resp.Weather) > 0 {
		condition = resp.Weather[0].Main
	}
	return &models.WeatherData{
		Temperature:   resp.Main.Temp,
		Humidity:      resp.Main.Humidity,
		Precipitation: resp.Rain.OneHour,
		WindSpeed:     resp.Wind.Speed * 3.6,
		Pressure:      resp.Main.Pressure,
		Visibility:    resp.Visibility / 1000,
		Condition:     condition,
		Timestamp:     time.Unix(resp.Dt, 0).UTC(),
	}, nil
}

// forecastResponse mirrors the OpenWeatherMap 5 day / 3 hour forecast payload.
type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			TempMax  float64 `json:"temp_max"`
			TempMin  float64 `json:"temp_min"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Pop  float64 `json:"pop"`
		Rain struct {
			ThreeHours float64 `json:"3h"`
		} `json:"rain"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	} `json:"list"`
}

// fetchForecast collapses the 3-hour slots into one entry per day.
func (s *Service) fetchForecast(ctx context.Context, latitude, longitude float64) ([]models.WeatherForecastDay, error) {
	endpoint := fmt.Sprintf("%s/forecast?%s", s.baseURL, s.query(latitude, longitude))
	start := time.Now()
	body, err := s.client.Get(ctx, endpoint)
	metrics.Get().RecordWeatherFetch(ctx, "forecast", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decoding forecast response")
	}

	days := map[string]*models.WeatherForecastDay{}
	for _, slot := range resp.List {
		t := time.Unix(slot.Dt, 0).UTC()
		dayKey := t.Format("2006-01-02")
		day, ok := days[dayKey]
		if !ok {
			day = &models.WeatherForecastDay{
				Date: t.Truncate(24 * time.Hour),
				High: slot.Main.TempMax,
				Low:  slot.Main.TempMin,
			}
			if len(slot.Weather) > 0 {
				day.Condition = slot.Weather[0].Main
			}
			days[dayKey] = day
		}
		if slot.Main.TempMax > day.High {
			day.High = slot.Main.TempMax
		}
		if slot.Main.TempMin < day.Low {
			day.Low = slot.Main.TempMin
		}
		if chance := slot.Pop * 100; chance > day.PrecipitationChance {
			day.PrecipitationChance = chance
		}
		day.Precipitation += slot.Rain.ThreeHours
		if slot.Main.Humidity > day.Humidity {
			day.Humidity = slot.Main.Humidity
		}
	}

	forecast := make([]models.WeatherForecastDay, 0, len(days))
	for _, day := range days {
		forecast = append(forecast, *day)
	}
	sort.Slice(forecast, func(i, j int) bool { return forecast[i].Date.Before(forecast[j].Date) })
	return forecast, nil
}

func (s *Service) query(latitude, longitude float64) string {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", latitude))
	q.Set("lon", fmt.Sprintf("%f", longitude))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")
	return q.Encode()
}

// deriveAlerts builds advisory entries from conditions the free API tier
// does not alert on itself.
func deriveAlerts(current models.WeatherData, forecast []models.WeatherForecastDay) []models.WeatherAlert {
	alerts := []models.WeatherAlert{}
	now := current.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if current.Temperature > 38 {
		alerts = append(alerts, models.WeatherAlert{
			Type:        "heat",
			Title:       "Extreme Heat Warning",
			Description: fmt.Sprintf("Temperature of %.1f°C poses severe crop stress risk.", current.Temperature),
			Severity:    "high",
			ValidUntil:  now.Add(24 * time.Hour),
		})
	}
	if current.Temperature < 0 {
		alerts = append(alerts, models.WeatherAlert{
			Type:        "frost",
			Title:       "Hard Freeze Warning",
			Description: fmt.Sprintf("Temperature of %.1f°C will damage unprotected crops.", current.Temperature),
			Severity:    "high",
			ValidUntil:  now.Add(12 * time.Hour),
		})
	}
	for _, day := range forecast {
		if day.Precipitation > 50 {
			alerts = append(alerts, models.WeatherAlert{
				Type:        "flood",
				Title:       "Heavy Rainfall Advisory",
				Description: fmt.Sprintf("Over %.0fmm of rain expected on %s.", day.Precipitation, day.Date.Format("Jan 2")),
				Severity:    "medium",
				ValidUntil:  day.Date.Add(24 * time.Hour),
			})
			break
		}
	}
	return alerts
}

// sampleReport is the development fallback when no API key is set.
func sampleReport(now time.Time) *models.WeatherReport {
	forecast := make([]models.WeatherForecastDay, 0, 5)
	for i := 1; i <= 5; i++ {
		forecast = append(forecast, models.WeatherForecastDay{
			Date:                now.AddDate(0, 0, i).Truncate(24 * time.Hour),
			High:                24 + float64(i%3),
			Low:                 14 + float64(i%2),
			Precipitation:       0,
			PrecipitationChance: 10,
			Humidity:            60,
			Condition:           "Clear",
		})
	}
	return &models.WeatherReport{
		Current: models.WeatherData{
			Temperature:   22,
			Humidity:      55,
			Precipitation: 0,
			WindSpeed:     8,
			Pressure:      1013,
			Visibility:    10,
			Condition:     "Clear",
			Timestamp:     now,
		},
		Forecast: forecast,
		Alerts:   []models.WeatherAlert{},
	}
}
