package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmflow/backend/internal/app/models"
)

func ptrFloat(f float64) *float64 { return &f }

func testCrop(name, status string, harvestOffset time.Duration, now time.Time) models.Crop {
	return models.Crop{
		Name:                name,
		Status:              status,
		PlantingDate:        now.AddDate(0, -3, 0),
		ExpectedHarvestDate: now.Add(harvestOffset),
	}
}

func TestGenerateFarmInsights_NeverEmpty(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	insights := GenerateFarmInsights(now, nil, nil)

	require.Len(t, insights, 1)
	assert.Equal(t, "Farm Data Analysis Complete", insights[0].Title)
	assert.Equal(t, 0.6, insights[0].Confidence)
	assert.False(t, insights[0].Actionable)
	assert.Equal(t, models.PriorityLow, insights[0].Priority)
}

func TestGenerateFarmInsights_HarvestReadyListsCropNames(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	crops := []models.Crop{
		testCrop("Tomatoes", models.CropStatusFruiting, -48*time.Hour, now),
		testCrop("Carrots", models.CropStatusGrowing, -24*time.Hour, now),
		testCrop("Lettuce", models.CropStatusHarvested, -72*time.Hour, now),
		testCrop("Peppers", models.CropStatusGrowing, 240*time.Hour, now),
	}

	insights := GenerateFarmInsights(now, crops, nil)

	require.NotEmpty(t, insights)
	harvest := insights[0]
	assert.Equal(t, "Crops Ready for Harvest", harvest.Title)
	assert.Contains(t, harvest.Description, "Tomatoes, Carrots")
	assert.NotContains(t, harvest.Description, "Lettuce")
	assert.NotContains(t, harvest.Description, "Peppers")
	assert.Equal(t, 0.9, harvest.Confidence)
	assert.Equal(t, models.PriorityHigh, harvest.Priority)
	assert.True(t, harvest.Actionable)
}

func TestGenerateFarmInsights_Diversification(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	crops := []models.Crop{
		testCrop("Corn", models.CropStatusGrowing, 240*time.Hour, now),
		testCrop("corn", models.CropStatusPlanted, 480*time.Hour, now),
	}

	insights := GenerateFarmInsights(now, crops, nil)

	var found bool
	for _, in := range insights {
		if in.Title == "Consider Crop Diversification" {
			found = true
			assert.Equal(t, 0.8, in.Confidence)
			assert.Equal(t, models.PriorityMedium, in.Priority)
		}
	}
	assert.True(t, found, "expected diversification insight for a monoculture")
}

func TestGenerateFarmInsights_NoDiversificationWithMixedCrops(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	crops := []models.Crop{
		testCrop("Corn", models.CropStatusGrowing, 240*time.Hour, now),
		testCrop("Beans", models.CropStatusGrowing, 240*time.Hour, now),
	}

	insights := GenerateFarmInsights(now, crops, nil)

	for _, in := range insights {
		assert.NotEqual(t, "Consider Crop Diversification", in.Title)
	}
}

func TestGenerateFarmInsights_LowActivitySkippedWhenNoActivities(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	insights := GenerateFarmInsights(now, nil, []models.Activity{})

	for _, in := range insights {
		assert.NotEqual(t, "Increase Activity Recording", in.Title)
	}
}

func TestGenerateFarmInsights_LowActivityFires(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	activities := []models.Activity{
		{Type: models.ActivityTypeIrrigation, CreatedAt: now.AddDate(0, 0, -5)},
		{Type: models.ActivityTypeFertilizer, CreatedAt: now.AddDate(0, 0, -45)},
	}

	insights := GenerateFarmInsights(now, nil, activities)

	var found bool
	for _, in := range insights {
		if in.Title == "Increase Activity Recording" {
			found = true
			assert.Contains(t, in.Description, "Only 1 activities")
			assert.Equal(t, 0.9, in.Confidence)
		}
	}
	assert.True(t, found)
}

func TestGenerateFarmInsights_HighCostNeedsSampleSize(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Ten activities is not enough, the rule needs more than ten.
	small := make([]models.Activity, 10)
	for i := range small {
		small[i] = models.Activity{Type: models.ActivityTypeIrrigation, Cost: ptrFloat(10), CreatedAt: now}
	}
	small[0].Cost = ptrFloat(1000)
	for _, in := range GenerateFarmInsights(now, nil, small) {
		assert.NotEqual(t, "High-Cost Activities Detected", in.Title)
	}

	large := append(small, models.Activity{Type: models.ActivityTypeHarvest, Cost: ptrFloat(10), CreatedAt: now})
	var found bool
	for _, in := range GenerateFarmInsights(now, nil, large) {
		if in.Title == "High-Cost Activities Detected" {
			found = true
			assert.Equal(t, 0.7, in.Confidence)
		}
	}
	assert.True(t, found)
}

func TestGenerateFarmInsights_CapAndOrdering(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	crops := []models.Crop{
		testCrop("Corn", models.CropStatusFruiting, -24*time.Hour, now),
		testCrop("corn", models.CropStatusGrowing, 240*time.Hour, now),
	}
	activities := make([]models.Activity, 12)
	for i := range activities {
		activities[i] = models.Activity{Type: models.ActivityTypeIrrigation, Cost: ptrFloat(10), CreatedAt: now.AddDate(0, 0, -60)}
	}
	activities[0].Cost = ptrFloat(500)

	insights := GenerateFarmInsights(now, crops, activities)

	assert.LessOrEqual(t, len(insights), 5)
	// Actionable insights come first, high priority leading.
	assert.Equal(t, "Crops Ready for Harvest", insights[0].Title)
	for i := 1; i < len(insights); i++ {
		if insights[i].Actionable && !insights[i-1].Actionable {
			t.Fatalf("actionable insight at %d after non-actionable", i)
		}
	}
}
