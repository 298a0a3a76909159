// Package insights computes farm and weather recommendations from crop,
// activity and weather snapshots. Generators are pure: same inputs and clock,
// same output. Nothing here touches the database.
package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/farmflow/backend/internal/app/models"
)

// Thresholds tuned against real farm data. Kept as named constants so the
// rules read like the policy they implement.
const (
	maxFarmInsights = 5

	lowActivityWindowDays = 30
	lowActivityThreshold  = 3

	highCostMinActivities = 10
	highCostMultiplier    = 2.0
)

// GenerateFarmInsights derives recommendations from the crop portfolio and
// activity history. The result is sorted actionable first, then by priority,
// capped at maxFarmInsights, and never empty.
func GenerateFarmInsights(now time.Time, crops []models.Crop, activities []models.Activity) []models.Insight {
	insights := []models.Insight{}

	if ready := harvestReadyInsight(now, crops); ready != nil {
		insights = append(insights, *ready)
	}
	if div := diversificationInsight(crops); div != nil {
		insights = append(insights, *div)
	}
	if low := lowActivityInsight(now, activities); low != nil {
		insights = append(insights, *low)
	}
	if cost := highCostInsight(activities); cost != nil {
		insights = append(insights, *cost)
	}

	if len(insights) == 0 {
		insights = append(insights, models.Insight{
			Title:       "Farm Data Analysis Complete",
			Description: "Your farm data has been analyzed. Keep recording activities to unlock more specific insights.",
			Confidence:  0.6,
			Actionable:  false,
			Priority:    models.PriorityLow,
			Category:    "general",
		})
	}

	sortFarmInsights(insights)
	if len(insights) > maxFarmInsights {
		insights = insights[:maxFarmInsights]
	}
	return insights
}

// harvestReadyInsight fires when any crop is past its expected harvest date
// and still unharvested. The description lists exactly those crop names.
func harvestReadyInsight(now time.Time, crops []models.Crop) *models.Insight {
	var ready []string
	for _, crop := range crops {
		if crop.HarvestReady(now) {
			ready = append(ready, crop.Name)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	return &models.Insight{
		Title:       "Crops Ready for Harvest",
		Description: fmt.Sprintf("The following crops are past their expected harvest date: %s. Schedule harvesting soon to avoid yield loss.", strings.Join(ready, ", ")),
		Confidence:  0.9,
		Actionable:  true,
		Priority:    models.PriorityHigh,
		Category:    "harvest",
	}
}

// diversificationInsight fires when every crop shares a single name.
func diversificationInsight(crops []models.Crop) *models.Insight {
	if len(crops) == 0 {
		return nil
	}
	names := map[string]struct{}{}
	for _, crop := range crops {
		names[strings.ToLower(crop.Name)] = struct{}{}
	}
	if len(names) != 1 {
		return nil
	}
	return &models.Insight{
		Title:       "Consider Crop Diversification",
		Description: "All your crops are the same type. Diversifying reduces pest pressure and market risk.",
		Confidence:  0.8,
		Actionable:  true,
		Priority:    models.PriorityMedium,
		Category:    "planning",
	}
}

// lowActivityInsight fires when fewer than lowActivityThreshold activities
// were recorded in the trailing window. Skipped entirely when no activities
// exist at all.
func lowActivityInsight(now time.Time, activities []models.Activity) *models.Insight {
	if len(activities) == 0 {
		return nil
	}
	cutoff := now.AddDate(0, 0, -lowActivityWindowDays)
	recent := 0
	for _, a := range activities {
		if a.CreatedAt.After(cutoff) {
			recent++
		}
	}
	if recent >= lowActivityThreshold {
		return nil
	}
	return &models.Insight{
		Title:       "Increase Activity Recording",
		Description: fmt.Sprintf("Only %d activities recorded in the last %d days. Regular logging improves the quality of your analytics.", recent, lowActivityWindowDays),
		Confidence:  0.9,
		Actionable:  true,
		Priority:    models.PriorityMedium,
		Category:    "data",
	}
}

// highCostInsight fires when any single activity cost exceeds twice the
// average, given a meaningful sample.
func highCostInsight(activities []models.Activity) *models.Insight {
	if len(activities) <= highCostMinActivities {
		return nil
	}
	var total float64
	var count int
	for _, a := range activities {
		if cost := a.CostValue(); cost > 0 {
			total += cost
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	for _, a := range activities {
		if a.CostValue() > avg*highCostMultiplier {
			return &models.Insight{
				Title:       "High-Cost Activities Detected",
				Description: fmt.Sprintf("Some activities cost more than %.0fx your average of %.2f. Review them for savings opportunities.", highCostMultiplier, avg),
				Confidence:  0.7,
				Actionable:  true,
				Priority:    models.PriorityMedium,
				Category:    "financial",
			}
		}
	}
	return nil
}

// sortFarmInsights orders actionable insights first, then by priority. The
// sort is stable so equal entries keep their rule order.
func sortFarmInsights(insights []models.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].Actionable != insights[j].Actionable {
			return insights[i].Actionable
		}
		return models.PriorityRank(insights[i].Priority) > models.PriorityRank(insights[j].Priority)
	})
}
