package models

import (
	"time"

	"github.com/google/uuid"
)

type TotalCounts struct {
	Crops     int64 `json:"crops"`
	Fields    int64 `json:"fields"`
	Tasks     int64 `json:"tasks"`
	Equipment int64 `json:"equipment"`
}

type TaskStats struct {
	Pending    int64 `json:"pending"`
	Overdue    int64 `json:"overdue"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"inProgress"`
	Active     int64 `json:"active"`
}

type WaterUsageStats struct {
	TotalWater        float64 `json:"totalWater"`
	AveragePerSession float64 `json:"averagePerSession"`
	SessionCount      int64   `json:"sessionCount"`
}

type FertilizerUsageStats struct {
	TotalAmount      float64            `json:"totalAmount"`
	ApplicationCount int64              `json:"applicationCount"`
	TypeBreakdown    map[string]float64 `json:"typeBreakdown"`
}

type YieldStats struct {
	TotalYield    float64            `json:"totalYield"`
	HarvestCount  int64              `json:"harvestCount"`
	CropBreakdown map[string]float64 `json:"cropBreakdown"`
}

// PestDiseaseStats always carries every severity key, zero-valued when no
// incidents were recorded.
type PestDiseaseStats struct {
	TotalIncidents    int64            `json:"totalIncidents"`
	PestCount         int64            `json:"pestCount"`
	DiseaseCount      int64            `json:"diseaseCount"`
	SeverityBreakdown map[string]int64 `json:"severityBreakdown"`
}

type UpcomingHarvest struct {
	CropID              uuid.UUID `json:"cropId"`
	Name                string    `json:"name"`
	ExpectedHarvestDate time.Time `json:"expectedHarvestDate"`
	Status              string    `json:"status"`
}

type FieldLocation struct {
	FieldID   uuid.UUID `json:"fieldId"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type DashboardSummary struct {
	Totals             TotalCounts          `json:"totals"`
	ActiveCrops        int64                `json:"activeCrops"`
	TaskStats          TaskStats            `json:"taskStats"`
	WaterStats         WaterUsageStats      `json:"waterStats"`
	FertilizerStats    FertilizerUsageStats `json:"fertilizerStats"`
	YieldStats         YieldStats           `json:"yieldStats"`
	PestDiseaseStats   PestDiseaseStats     `json:"pestDiseaseStats"`
	FinancialSummary   FinancialSummary     `json:"financialSummary"`
	ProfitMargin       float64              `json:"profitMargin"`
	RecentTasks        []Task               `json:"recentTasks"`
	RecentHarvestCount int64                `json:"recentHarvestCount"`
	UpcomingHarvests   []UpcomingHarvest    `json:"upcomingHarvests"`
	FieldLocation      *FieldLocation       `json:"fieldLocation,omitempty"`
	GeneratedAt        time.Time            `json:"generatedAt"`
}

type DashboardAlert struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type QuickStats struct {
	ActiveCrops        int64   `json:"activeCrops"`
	PendingTasks       int64   `json:"pendingTasks"`
	RecentHarvestCount int64   `json:"recentHarvestCount"`
	Balance            float64 `json:"balance"`
}

// DashboardOptions carries the optional query filters of the summary endpoint.
type DashboardOptions struct {
	StartDate       *time.Time
	EndDate         *time.Time
	IncludeInactive bool
}
