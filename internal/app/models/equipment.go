package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EquipmentStatusOperational = "OPERATIONAL"
	EquipmentStatusMaintenance = "MAINTENANCE"
	EquipmentStatusRetired     = "RETIRED"
)

type Equipment struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              uuid.UUID  `json:"userId"`
	Name                string     `json:"name"`
	EquipmentType       string     `json:"equipmentType"`
	Status              string     `json:"status"`
	PurchaseDate        *time.Time `json:"purchaseDate,omitempty"`
	LastMaintenanceDate *time.Time `json:"lastMaintenanceDate,omitempty"`
	NextMaintenanceDate *time.Time `json:"nextMaintenanceDate,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type CreateEquipmentRequest struct {
	Name                string     `json:"name"`
	EquipmentType       string     `json:"equipmentType"`
	Status              *string    `json:"status"`
	PurchaseDate        *time.Time `json:"purchaseDate"`
	LastMaintenanceDate *time.Time `json:"lastMaintenanceDate"`
	NextMaintenanceDate *time.Time `json:"nextMaintenanceDate"`
	Notes               *string    `json:"notes"`
}

type UpdateEquipmentRequest struct {
	Name                *string    `json:"name"`
	EquipmentType       *string    `json:"equipmentType"`
	Status              *string    `json:"status"`
	PurchaseDate        *time.Time `json:"purchaseDate"`
	LastMaintenanceDate *time.Time `json:"lastMaintenanceDate"`
	NextMaintenanceDate *time.Time `json:"nextMaintenanceDate"`
	Notes               *string    `json:"notes"`
}

// EquipmentWithMaintenance annotates equipment with its derived maintenance
// flag for list responses.
type EquipmentWithMaintenance struct {
	Equipment
	MaintenanceDue bool `json:"maintenanceDue"`
}

// MaintenanceDue reports whether the next maintenance date falls within the
// given number of days from now, or is already past.
func (e Equipment) MaintenanceDue(now time.Time, days int) bool {
	if e.NextMaintenanceDate == nil {
		return false
	}
	return e.NextMaintenanceDate.Before(now.AddDate(0, 0, days))
}
