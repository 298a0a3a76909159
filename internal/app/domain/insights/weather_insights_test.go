package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmflow/backend/internal/app/models"
)

func calmReport(temp float64) models.WeatherReport {
	return models.WeatherReport{
		Current: models.WeatherData{
			Temperature:   temp,
			Humidity:      50,
			Precipitation: 1,
			WindSpeed:     5,
		},
		Forecast: []models.WeatherForecastDay{
			{PrecipitationChance: 20, Precipitation: 2},
		},
	}
}

func TestGenerateWeatherInsights_HeatStress(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	report := calmReport(32)

	insights := GenerateWeatherInsights(now, report, nil, nil)

	require.NotEmpty(t, insights)
	heat := insights[0]
	assert.Equal(t, "Heat Stress Prevention Required", heat.Title)
	assert.Contains(t, heat.Description, "32.0°C")
	assert.Equal(t, 0.9, heat.Confidence)
	assert.Equal(t, models.PriorityHigh, heat.Priority)
	assert.Equal(t, models.UrgencyImmediate, heat.Urgency)
}

func TestGenerateWeatherInsights_FrostNeedsPlantedCrops(t *testing.T) {
	now := time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC)
	report := calmReport(2)

	// No planted crops, no frost warning.
	for _, in := range GenerateWeatherInsights(now, report, nil, nil) {
		assert.NotEqual(t, "Frost Protection Needed", in.Title)
	}

	crops := []models.Crop{{Name: "Lettuce", Status: models.CropStatusPlanted, ExpectedHarvestDate: now.AddDate(0, 2, 0)}}
	insights := GenerateWeatherInsights(now, report, crops, nil)
	require.NotEmpty(t, insights)
	assert.Equal(t, "Frost Protection Needed", insights[0].Title)
	assert.Equal(t, 0.95, insights[0].Confidence)
}

func TestGenerateWeatherInsights_IrrigationAdjustment(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	report := calmReport(22)
	report.Forecast = []models.WeatherForecastDay{{PrecipitationChance: 80}}

	activities := []models.Activity{
		{Type: models.ActivityTypeIrrigation, CreatedAt: now.AddDate(0, 0, -1)},
		{Type: models.ActivityTypeIrrigation, CreatedAt: now.AddDate(0, 0, -2)},
		{Type: models.ActivityTypeIrrigation, CreatedAt: now.AddDate(0, 0, -3)},
	}

	insights := GenerateWeatherInsights(now, report, nil, activities)

	var found bool
	for _, in := range insights {
		if in.Title == "Adjust Irrigation Schedule" {
			found = true
			assert.Equal(t, 0.85, in.Confidence)
		}
	}
	assert.True(t, found)
}

func TestGenerateWeatherInsights_DrySpellNeedsCrops(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	report := calmReport(22)
	report.Current.Precipitation = 0
	crops := []models.Crop{{Name: "Peppers", Status: models.CropStatusGrowing, ExpectedHarvestDate: now.AddDate(0, 2, 0)}}

	insights := GenerateWeatherInsights(now, report, crops, nil)

	var found bool
	for _, in := range insights {
		if in.Title == "Irrigation Schedule Recommended" {
			found = true
			assert.Equal(t, 0.8, in.Confidence)
			assert.Equal(t, models.PriorityHigh, in.Priority)
		}
	}
	assert.True(t, found)
}

func TestGenerateWeatherInsights_FungalRiskMatchesCropNames(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	report := calmReport(22)
	report.Current.Humidity = 85

	cases := []struct {
		crop    string
		matches bool
	}{
		{"Cherry Tomato", true},
		{"CUCUMBER", true},
		{"Butternut Squash", true},
		{"Carrot", false},
	}
	for _, tc := range cases {
		crops := []models.Crop{{Name: tc.crop, Status: models.CropStatusGrowing, ExpectedHarvestDate: now.AddDate(0, 2, 0)}}
		var found bool
		for _, in := range GenerateWeatherInsights(now, report, crops, nil) {
			if in.Title == "Fungal Disease Prevention" {
				found = true
			}
		}
		assert.Equal(t, tc.matches, found, "crop %q", tc.crop)
	}
}

func TestGenerateWeatherInsights_WindRiskForTallCrops(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	report := calmReport(22)
	report.Current.WindSpeed = 20
	crops := []models.Crop{{Name: "Sweet Corn", Status: models.CropStatusGrowing, ExpectedHarvestDate: now.AddDate(0, 2, 0)}}

	insights := GenerateWeatherInsights(now, report, crops, nil)

	var found bool
	for _, in := range insights {
		if in.Title == "Secure Tall Plants" {
			found = true
			assert.Equal(t, 0.9, in.Confidence)
			assert.Equal(t, models.UrgencyImmediate, in.Urgency)
		}
	}
	assert.True(t, found)
}

func TestGenerateWeatherInsights_SpringPlantingWindow(t *testing.T) {
	spring := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	report := calmReport(20)

	var found bool
	for _, in := range GenerateWeatherInsights(spring, report, nil, nil) {
		if in.Title == "Optimal Spring Planting Conditions" {
			found = true
		}
	}
	assert.True(t, found, "expected planting insight in spring at 20°C")

	for _, in := range GenerateWeatherInsights(summer, report, nil, nil) {
		assert.NotEqual(t, "Optimal Spring Planting Conditions", in.Title)
	}
}

func TestGenerateWeatherInsights_HighSeverityAlertPassesThrough(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	report := calmReport(22)
	report.Alerts = []models.WeatherAlert{
		{Type: "heat", Title: "Extreme Heat Warning", Description: "Dangerous heat.", Severity: "high"},
		{Type: "wind", Title: "Breeze Advisory", Description: "Light wind.", Severity: "low"},
	}

	insights := GenerateWeatherInsights(now, report, nil, nil)

	require.NotEmpty(t, insights)
	assert.Equal(t, "Extreme Heat Warning", insights[0].Title)
	assert.Equal(t, 1.0, insights[0].Confidence)
	for _, in := range insights {
		assert.NotEqual(t, "Breeze Advisory", in.Title)
	}
}

func TestGenerateWeatherInsights_HarvestBeforeRain(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	report := calmReport(22)
	report.Forecast = []models.WeatherForecastDay{{Precipitation: 25, PrecipitationChance: 90}}
	crops := []models.Crop{
		{Name: "Wheat", Status: models.CropStatusFruiting, ExpectedHarvestDate: now.AddDate(0, 0, 3)},
		{Name: "Barley", Status: models.CropStatusGrowing, ExpectedHarvestDate: now.AddDate(0, 0, 30)},
	}

	insights := GenerateWeatherInsights(now, report, crops, nil)

	var found bool
	for _, in := range insights {
		if in.Title == "Harvest Before Rain" {
			found = true
			assert.Contains(t, in.Description, "Wheat")
			assert.NotContains(t, in.Description, "Barley")
			assert.Equal(t, models.UrgencyImmediate, in.Urgency)
		}
	}
	assert.True(t, found)
}

func TestGenerateWeatherInsights_FallbackAndCap(t *testing.T) {
	now := time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC)

	insights := GenerateWeatherInsights(now, calmReport(22), nil, nil)
	require.Len(t, insights, 1)
	assert.Equal(t, "Weather Conditions Normal", insights[0].Title)
	assert.False(t, insights[0].Actionable)

	// Stack every rule at once and verify the cap.
	report := models.WeatherReport{
		Current: models.WeatherData{Temperature: 32, Humidity: 90, Precipitation: 0, WindSpeed: 25},
		Forecast: []models.WeatherForecastDay{
			{PrecipitationChance: 90, Precipitation: 30},
		},
		Alerts: []models.WeatherAlert{{Title: "Storm Warning", Severity: "high"}},
	}
	crops := []models.Crop{
		{Name: "Tomato", Status: models.CropStatusGrowing, ExpectedHarvestDate: now.AddDate(0, 0, 2)},
		{Name: "Corn", Status: models.CropStatusGrowing, ExpectedHarvestDate: now.AddDate(0, 0, 3)},
	}
	activities := []models.Activity{
		{Type: models.ActivityTypeIrrigation, Cost: ptrFloat(100), CreatedAt: now.AddDate(0, 0, -1)},
		{Type: models.ActivityTypeIrrigation, Cost: ptrFloat(100), CreatedAt: now.AddDate(0, 0, -2)},
		{Type: models.ActivityTypeIrrigation, Cost: ptrFloat(100), CreatedAt: now.AddDate(0, 0, -3)},
		{Type: models.ActivityTypeFertilizer, CreatedAt: now.AddDate(0, 0, -4)},
		{Type: models.ActivityTypeHarvest, CreatedAt: now.AddDate(0, 0, -5)},
		{Type: models.ActivityTypeHarvest, CreatedAt: now.AddDate(0, 0, -6)},
	}

	capped := GenerateWeatherInsights(now, report, crops, activities)
	assert.Len(t, capped, 6)
	// Immediate urgency entries lead the list.
	assert.Equal(t, models.UrgencyImmediate, capped[0].Urgency)
}

func TestSeason(t *testing.T) {
	assert.Equal(t, "spring", season(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "spring", season(time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "summer", season(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "fall", season(time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "winter", season(time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "winter", season(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)))
}
