package models

import (
	"time"

	"github.com/google/uuid"
)

// Crop lifecycle statuses. A crop moves forward through the growing stages and
// terminates in HARVESTED or COMPLETED.
const (
	CropStatusPlanted   = "PLANTED"
	CropStatusGrowing   = "GROWING"
	CropStatusFlowering = "FLOWERING"
	CropStatusFruiting  = "FRUITING"
	CropStatusHarvested = "HARVESTED"
	CropStatusCompleted = "COMPLETED"
)

// ActiveCropStatuses are the statuses counted as "in the ground".
var ActiveCropStatuses = []string{
	CropStatusPlanted,
	CropStatusGrowing,
	CropStatusFlowering,
	CropStatusFruiting,
}

type Crop struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              uuid.UUID  `json:"userId"`
	FieldID             *uuid.UUID `json:"fieldId,omitempty"`
	Name                string     `json:"name"`
	Variety             *string    `json:"variety,omitempty"`
	Status              string     `json:"status"`
	PlantingDate        time.Time  `json:"plantingDate"`
	ExpectedHarvestDate time.Time  `json:"expectedHarvestDate"`
	ActualHarvestDate   *time.Time `json:"actualHarvestDate,omitempty"`
	Area                *float64   `json:"area,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type CreateCropRequest struct {
	FieldID             *uuid.UUID `json:"fieldId"`
	Name                string     `json:"name"`
	Variety             *string    `json:"variety"`
	Status              *string    `json:"status"`
	PlantingDate        time.Time  `json:"plantingDate"`
	ExpectedHarvestDate time.Time  `json:"expectedHarvestDate"`
	Area                *float64   `json:"area"`
	Notes               *string    `json:"notes"`
}

type UpdateCropRequest struct {
	FieldID             *uuid.UUID `json:"fieldId"`
	Name                *string    `json:"name"`
	Variety             *string    `json:"variety"`
	Status              *string    `json:"status"`
	PlantingDate        *time.Time `json:"plantingDate"`
	ExpectedHarvestDate *time.Time `json:"expectedHarvestDate"`
	ActualHarvestDate   *time.Time `json:"actualHarvestDate"`
	Area                *float64   `json:"area"`
	Notes               *string    `json:"notes"`
}

// HarvestReady reports whether the crop is past its expected harvest date and
// has not been harvested yet.
func (c Crop) HarvestReady(now time.Time) bool {
	return c.ExpectedHarvestDate.Before(now) &&
		c.Status != CropStatusHarvested &&
		c.Status != CropStatusCompleted
}
