package models

import (
	"time"

	"github.com/google/uuid"
)

type Field struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Area      float64   `json:"area"`
	SoilType  *string   `json:"soilType,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateFieldRequest struct {
	Name      string   `json:"name"`
	Area      float64  `json:"area"`
	SoilType  *string  `json:"soilType"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
}

type UpdateFieldRequest struct {
	Name      *string  `json:"name"`
	Area      *float64 `json:"area"`
	SoilType  *string  `json:"soilType"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
	IsActive  *bool    `json:"isActive"`
}

// FieldDependencies counts records that reference a field and block deletion.
type FieldDependencies struct {
	Crops int64 `json:"crops"`
	Tasks int64 `json:"tasks"`
}

func (d FieldDependencies) Any() bool { return d.Crops > 0 || d.Tasks > 0 }
