package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

func TestGetReport_SampleFallbackWithoutKey(t *testing.T) {
	svc := NewService("", "http://unused", time.Minute, zap.NewNop())

	report, err := svc.GetReport(context.Background(), 40.71, -74.0)

	require.NoError(t, err)
	assert.Equal(t, 22.0, report.Current.Temperature)
	assert.Len(t, report.Forecast, 5)
	assert.Empty(t, report.Alerts)
}

func TestGetReport_FetchesAndCaches(t *testing.T) {
	calls := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls[r.URL.Path]++
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		switch r.URL.Path {
		case "/weather":
			json.NewEncoder(w).Encode(map[string]any{
				"main":       map[string]any{"temp": 18.5, "humidity": 70, "pressure": 1008},
				"wind":       map[string]any{"speed": 5.0},
				"rain":       map[string]any{"1h": 1.2},
				"weather":    []map[string]any{{"main": "Rain"}},
				"visibility": 8000,
				"dt":         time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC).Unix(),
			})
		case "/forecast":
			base := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
			json.NewEncoder(w).Encode(map[string]any{
				"list": []map[string]any{
					{
						"dt":      base.Add(6 * time.Hour).Unix(),
						"main":    map[string]any{"temp_max": 20.0, "temp_min": 12.0, "humidity": 65},
						"pop":     0.3,
						"rain":    map[string]any{"3h": 2.0},
						"weather": []map[string]any{{"main": "Clouds"}},
					},
					{
						"dt":   base.Add(12 * time.Hour).Unix(),
						"main": map[string]any{"temp_max": 25.0, "temp_min": 14.0, "humidity": 50},
						"pop":  0.8,
						"rain": map[string]any{"3h": 3.5},
					},
					{
						"dt":   base.AddDate(0, 0, 1).Unix(),
						"main": map[string]any{"temp_max": 22.0, "temp_min": 13.0, "humidity": 55},
						"pop":  0.1,
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc := NewService("test-key", srv.URL, time.Minute, zap.NewNop())

	report, err := svc.GetReport(context.Background(), 40.71, -74.0)
	require.NoError(t, err)

	assert.Equal(t, 18.5, report.Current.Temperature)
	assert.Equal(t, 18.0, report.Current.WindSpeed, "m/s converted to km/h")
	assert.Equal(t, 8.0, report.Current.Visibility, "meters converted to km")
	assert.Equal(t, "Rain", report.Current.Condition)

	require.Len(t, report.Forecast, 2, "3-hour slots collapse to days")
	day := report.Forecast[0]
	assert.Equal(t, 25.0, day.High)
	assert.Equal(t, 12.0, day.Low)
	assert.Equal(t, 80.0, day.PrecipitationChance)
	assert.Equal(t, 5.5, day.Precipitation)
	assert.Equal(t, 65.0, day.Humidity)
	assert.True(t, day.Date.Before(report.Forecast[1].Date))

	// Second call for the same coordinates is served from the cache.
	_, err = svc.GetReport(context.Background(), 40.71, -74.0)
	require.NoError(t, err)
	assert.Equal(t, 1, calls["/weather"])
	assert.Equal(t, 1, calls["/forecast"])
}

func TestDeriveAlerts(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	hot := deriveAlerts(models.WeatherData{Temperature: 40, Timestamp: now}, nil)
	require.Len(t, hot, 1)
	assert.Equal(t, "heat", hot[0].Type)
	assert.Equal(t, "high", hot[0].Severity)

	cold := deriveAlerts(models.WeatherData{Temperature: -3, Timestamp: now}, nil)
	require.Len(t, cold, 1)
	assert.Equal(t, "frost", cold[0].Type)

	wet := deriveAlerts(models.WeatherData{Temperature: 20, Timestamp: now}, []models.WeatherForecastDay{
		{Date: now.AddDate(0, 0, 1), Precipitation: 60},
		{Date: now.AddDate(0, 0, 2), Precipitation: 70},
	})
	require.Len(t, wet, 1, "only the first flood day alerts")
	assert.Equal(t, "flood", wet[0].Type)
	assert.Equal(t, "medium", wet[0].Severity)

	calm := deriveAlerts(models.WeatherData{Temperature: 20, Timestamp: now}, nil)
	assert.Empty(t, calm)
}

func TestSampleReport(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	report := sampleReport(now)

	assert.Equal(t, now, report.Current.Timestamp)
	require.Len(t, report.Forecast, 5)
	for i, day := range report.Forecast {
		assert.True(t, day.Date.After(now.AddDate(0, 0, i).Add(-24*time.Hour)))
		assert.Greater(t, day.High, day.Low)
	}
	assert.NotNil(t, report.Alerts)
}
