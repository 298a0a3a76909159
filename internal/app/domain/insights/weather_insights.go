package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/farmflow/backend/internal/app/models"
)

// Weather rule thresholds.
const (
	maxWeatherInsights = 6

	heatStressTempC       = 30.0
	frostRiskTempC        = 5.0
	rainChanceThreshold   = 70.0
	highHumidityThreshold = 80.0
	strongWindKmh         = 15.0
	heavyRainMm           = 20.0

	springPlantingMinC = 15.0
	springPlantingMaxC = 25.0

	irrigationLookbackDays  = 7
	irrigationAdjustMin     = 3
	irrigationCostThreshold = 200.0
	costSavingsMinActivity  = 5
	harvestRushWindowDays   = 7
)

// Crop keyword lists matched against crop names. Substring matching via
// Aho-Corasick so "Cherry Tomato" still counts as a tomato.
var (
	fungusSusceptibleCrops = []string{"tomato", "cucumber", "squash"}
	tallCrops              = []string{"corn", "sunflower", "bean"}
)

var (
	fungusMatcher = newCropMatcher(fungusSusceptibleCrops)
	tallMatcher   = newCropMatcher(tallCrops)
)

func newCropMatcher(patterns []string) ahocorasick.AhoCorasick {
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	return builder.Build(patterns)
}

func anyCropMatches(matcher ahocorasick.AhoCorasick, crops []models.Crop) bool {
	for _, crop := range crops {
		if len(matcher.FindAll(crop.Name)) > 0 {
			return true
		}
	}
	return false
}

// Season boundaries by month: Mar-May spring, Jun-Aug summer, Sep-Nov fall.
func season(now time.Time) string {
	switch m := now.Month(); {
	case m >= time.March && m <= time.May:
		return "spring"
	case m >= time.June && m <= time.August:
		return "summer"
	case m >= time.September && m <= time.November:
		return "fall"
	default:
		return "winter"
	}
}

// GenerateWeatherInsights combines current weather, the forecast and recent
// farm activity into prioritized recommendations. Sorted by urgency then
// priority, capped at maxWeatherInsights, never empty.
func GenerateWeatherInsights(now time.Time, report models.WeatherReport, crops []models.Crop, activities []models.Activity) []models.Insight {
	insights := []models.Insight{}
	current := report.Current

	rainComing := false
	for _, day := range report.Forecast {
		if day.PrecipitationChance > rainChanceThreshold {
			rainComing = true
			break
		}
	}

	irrigationCount := 0
	irrigationCost := 0.0
	cutoff := now.AddDate(0, 0, -irrigationLookbackDays)
	for _, a := range activities {
		if a.Type == models.ActivityTypeIrrigation && a.CreatedAt.After(cutoff) {
			irrigationCount++
			irrigationCost += a.CostValue()
		}
	}

	// Heat stress.
	if current.Temperature > heatStressTempC {
		insights = append(insights, models.Insight{
			Title:         "Heat Stress Prevention Required",
			Description:   fmt.Sprintf("Temperature is %.1f°C. Increase irrigation frequency and consider shade cloth for sensitive crops.", current.Temperature),
			Confidence:    0.9,
			Actionable:    true,
			Priority:      models.PriorityHigh,
			Category:      "weather",
			WeatherFactor: "temperature",
			Urgency:       models.UrgencyImmediate,
		})
	}

	// Frost risk for freshly planted crops.
	if current.Temperature < frostRiskTempC && hasStatus(crops, models.CropStatusPlanted) {
		insights = append(insights, models.Insight{
			Title:         "Frost Protection Needed",
			Description:   fmt.Sprintf("Temperature is %.1f°C with recently planted crops in the ground. Cover plants or use frost protection tonight.", current.Temperature),
			Confidence:    0.95,
			Actionable:    true,
			Priority:      models.PriorityHigh,
			Category:      "weather",
			WeatherFactor: "temperature",
			Urgency:       models.UrgencyImmediate,
		})
	}

	// Rain coming after frequent irrigation.
	if rainComing && irrigationCount > irrigationAdjustMin-1 {
		insights = append(insights, models.Insight{
			Title:         "Adjust Irrigation Schedule",
			Description:   "Rain is expected within the forecast window and you have irrigated frequently this week. Skip upcoming sessions to save water.",
			Confidence:    0.85,
			Actionable:    true,
			Priority:      models.PriorityMedium,
			Category:      "irrigation",
			WeatherFactor: "precipitation",
			Urgency:       models.UrgencyThisWeek,
		})
	}

	// Dry spell with no irrigation on record.
	if !rainComing && current.Precipitation == 0 && irrigationCount == 0 && len(crops) > 0 {
		insights = append(insights, models.Insight{
			Title:         "Irrigation Schedule Recommended",
			Description:   "No rain is forecast and no recent irrigation has been recorded. Set up a watering schedule to protect your crops.",
			Confidence:    0.8,
			Actionable:    true,
			Priority:      models.PriorityHigh,
			Category:      "irrigation",
			WeatherFactor: "precipitation",
			Urgency:       models.UrgencyThisWeek,
		})
	}

	// Fungal pressure on susceptible crops.
	if current.Humidity > highHumidityThreshold && anyCropMatches(fungusMatcher, crops) {
		insights = append(insights, models.Insight{
			Title:         "Fungal Disease Prevention",
			Description:   fmt.Sprintf("Humidity is %.0f%% and you grow fungus-susceptible crops. Improve airflow and consider preventive fungicide.", current.Humidity),
			Confidence:    0.8,
			Actionable:    true,
			Priority:      models.PriorityMedium,
			Category:      "disease",
			WeatherFactor: "humidity",
			Urgency:       models.UrgencyThisWeek,
		})
	}

	// Wind damage to tall crops.
	if current.WindSpeed > strongWindKmh && anyCropMatches(tallMatcher, crops) {
		insights = append(insights, models.Insight{
			Title:         "Secure Tall Plants",
			Description:   fmt.Sprintf("Wind speed is %.0f km/h. Stake or support tall crops before gusts cause lodging.", current.WindSpeed),
			Confidence:    0.9,
			Actionable:    true,
			Priority:      models.PriorityHigh,
			Category:      "weather",
			WeatherFactor: "wind",
			Urgency:       models.UrgencyImmediate,
		})
	}

	// Spring planting window.
	if season(now) == "spring" && current.Temperature > springPlantingMinC && current.Temperature < springPlantingMaxC {
		insights = append(insights, models.Insight{
			Title:         "Optimal Spring Planting Conditions",
			Description:   fmt.Sprintf("Temperature of %.1f°C is ideal for spring planting. Good window for cool-season crops.", current.Temperature),
			Confidence:    0.85,
			Actionable:    true,
			Priority:      models.PriorityMedium,
			Category:      "planting",
			WeatherFactor: "temperature",
			Urgency:       models.UrgencyThisMonth,
		})
	}

	// Severe weather alerts pass straight through.
	for _, alert := range report.Alerts {
		if alert.Severity == "high" {
			insights = append(insights, models.Insight{
				Title:         alert.Title,
				Description:   alert.Description,
				Confidence:    1.0,
				Actionable:    true,
				Priority:      models.PriorityHigh,
				Category:      "alert",
				WeatherFactor: alert.Type,
				Urgency:       models.UrgencyImmediate,
			})
		}
	}

	// Irrigation spend about to be wasted on rain.
	if len(activities) > costSavingsMinActivity && irrigationCost > irrigationCostThreshold && rainComing {
		insights = append(insights, models.Insight{
			Title:         "Weather-Based Cost Savings",
			Description:   fmt.Sprintf("You spent %.2f on irrigation this week and rain is coming. Pausing irrigation could cut costs.", irrigationCost),
			Confidence:    0.75,
			Actionable:    true,
			Priority:      models.PriorityMedium,
			Category:      "financial",
			WeatherFactor: "precipitation",
			Urgency:       models.UrgencyThisWeek,
		})
	}

	// Harvest before heavy rain.
	if names := harvestBeforeRain(now, report.Forecast, crops); len(names) > 0 {
		insights = append(insights, models.Insight{
			Title:         "Harvest Before Rain",
			Description:   fmt.Sprintf("Heavy rain is forecast and these crops are due for harvest within a week: %s. Harvest early to protect quality.", strings.Join(names, ", ")),
			Confidence:    0.9,
			Actionable:    true,
			Priority:      models.PriorityHigh,
			Category:      "harvest",
			WeatherFactor: "precipitation",
			Urgency:       models.UrgencyImmediate,
		})
	}

	if len(insights) == 0 {
		insights = append(insights, models.Insight{
			Title:         "Weather Conditions Normal",
			Description:   "Current weather poses no unusual risk to your crops. Continue routine care.",
			Confidence:    0.6,
			Actionable:    false,
			Priority:      models.PriorityLow,
			Category:      "weather",
			WeatherFactor: "general",
			Urgency:       models.UrgencyThisMonth,
		})
	}

	sortWeatherInsights(insights)
	if len(insights) > maxWeatherInsights {
		insights = insights[:maxWeatherInsights]
	}
	return insights
}

func hasStatus(crops []models.Crop, status string) bool {
	for _, crop := range crops {
		if crop.Status == status {
			return true
		}
	}
	return false
}

// harvestBeforeRain returns names of unharvested crops whose expected harvest
// date falls within the next week while heavy rain is forecast.
func harvestBeforeRain(now time.Time, forecast []models.WeatherForecastDay, crops []models.Crop) []string {
	heavyRain := false
	for _, day := range forecast {
		if day.Precipitation > heavyRainMm {
			heavyRain = true
			break
		}
	}
	if !heavyRain {
		return nil
	}

	windowEnd := now.AddDate(0, 0, harvestRushWindowDays)
	var names []string
	for _, crop := range crops {
		if crop.Status == models.CropStatusHarvested || crop.Status == models.CropStatusCompleted {
			continue
		}
		if !crop.ExpectedHarvestDate.Before(now) && !crop.ExpectedHarvestDate.After(windowEnd) {
			names = append(names, crop.Name)
		}
	}
	return names
}

// sortWeatherInsights orders by urgency, then priority. Stable so rule order
// breaks ties.
func sortWeatherInsights(insights []models.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		ui, uj := models.UrgencyRank(insights[i].Urgency), models.UrgencyRank(insights[j].Urgency)
		if ui != uj {
			return ui > uj
		}
		return models.PriorityRank(insights[i].Priority) > models.PriorityRank(insights[j].Priority)
	})
}
