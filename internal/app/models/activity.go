package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity log kinds. Logs are immutable once recorded.
const (
	ActivityTypeIrrigation  = "IRRIGATION"
	ActivityTypeFertilizer  = "FERTILIZER"
	ActivityTypePestDisease = "PEST_DISEASE"
	ActivityTypeHarvest     = "HARVEST"
)

const (
	IncidentTypePest    = "PEST"
	IncidentTypeDisease = "DISEASE"
)

const (
	SeverityLow    = "LOW"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

type IrrigationLog struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	CropID      uuid.UUID `json:"cropId"`
	WaterAmount float64   `json:"waterAmount"`
	Duration    *float64  `json:"duration,omitempty"`
	Method      *string   `json:"method,omitempty"`
	Cost        *float64  `json:"cost,omitempty"`
	Date        time.Time `json:"date"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type FertilizerLog struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	CropID         uuid.UUID `json:"cropId"`
	FertilizerType string    `json:"fertilizerType"`
	Amount         float64   `json:"amount"`
	Cost           *float64  `json:"cost,omitempty"`
	Date           time.Time `json:"date"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type PestDiseaseLog struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	CropID       uuid.UUID `json:"cropId"`
	IncidentType string    `json:"incidentType"`
	Name         string    `json:"name"`
	Severity     string    `json:"severity"`
	Treatment    *string   `json:"treatment,omitempty"`
	Cost         *float64  `json:"cost,omitempty"`
	Date         time.Time `json:"date"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type HarvestLog struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	CropID      uuid.UUID `json:"cropId"`
	Quantity    float64   `json:"quantity"`
	Unit        *string   `json:"unit,omitempty"`
	Quality     *string   `json:"quality,omitempty"`
	HarvestDate time.Time `json:"harvestDate"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Activity is the flattened cross-log view consumed by the insight generators
// and the recent activity feed.
type Activity struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	CropID    *uuid.UUID `json:"cropId,omitempty"`
	CropName  string     `json:"cropName,omitempty"`
	Cost      *float64   `json:"cost,omitempty"`
	Details   string     `json:"details,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CostValue returns the activity cost, treating a missing cost as zero.
func (a Activity) CostValue() float64 {
	if a.Cost == nil {
		return 0
	}
	return *a.Cost
}

type CreateIrrigationLogRequest struct {
	CropID      uuid.UUID  `json:"cropId"`
	WaterAmount float64    `json:"waterAmount"`
	Duration    *float64   `json:"duration"`
	Method      *string    `json:"method"`
	Cost        *float64   `json:"cost"`
	Date        *time.Time `json:"date"`
	Notes       *string    `json:"notes"`
}

type CreateFertilizerLogRequest struct {
	CropID         uuid.UUID  `json:"cropId"`
	FertilizerType string     `json:"fertilizerType"`
	Amount         float64    `json:"amount"`
	Cost           *float64   `json:"cost"`
	Date           *time.Time `json:"date"`
	Notes          *string    `json:"notes"`
}

type CreatePestDiseaseLogRequest struct {
	CropID       uuid.UUID  `json:"cropId"`
	IncidentType string     `json:"incidentType"`
	Name         string     `json:"name"`
	Severity     string     `json:"severity"`
	Treatment    *string    `json:"treatment"`
	Cost         *float64   `json:"cost"`
	Date         *time.Time `json:"date"`
	Notes        *string    `json:"notes"`
}

type CreateHarvestLogRequest struct {
	CropID      uuid.UUID  `json:"cropId"`
	Quantity    float64    `json:"quantity"`
	Unit        *string    `json:"unit"`
	Quality     *string    `json:"quality"`
	HarvestDate *time.Time `json:"harvestDate"`
	Notes       *string    `json:"notes"`
}
