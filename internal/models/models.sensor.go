// FilePath: internal/models/models.sensor.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SensorType string

const (
	Moisture       SensorType = "moisture"
	Temperature    SensorType = "temperature"
	Multiparameter SensorType = "multiparameter"
)

// ValidSensorType reports whether t is one of the supported device classes.
func ValidSensorType(t SensorType) bool {
	switch t {
	case Moisture, Temperature, Multiparameter:
		return true
	}
	return false
}

// Sensor is a registered field device assigned to a plot. Readings reference
// sensors by id or code; the relation is a foreign key plus indexed queries,
// never an embedded collection.
type Sensor struct {
	ID            string              `json:"id" db:"id"`
	PlotID        string              `json:"plot_id" db:"plot_id"`
	Code          string              `json:"code" db:"code"`
	Type          SensorType          `json:"type" db:"type"`
	Model         *string             `json:"model,omitempty" db:"model"`
	Manufacturer  *string             `json:"manufacturer,omitempty" db:"manufacturer"`
	InstalledAt   *time.Time          `json:"installed_at,omitempty" db:"installed_at"`
	Latitude      decimal.NullDecimal `json:"latitude" db:"latitude"`
	Longitude     decimal.NullDecimal `json:"longitude" db:"longitude"`
	Active        bool                `json:"active" db:"active"`
	LastReadingAt *time.Time          `json:"last_reading_at,omitempty" db:"last_reading_at"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// SensorDraft is the inbound payload for creating or updating a sensor.
type SensorDraft struct {
	PlotID       string              `json:"plot_id" validate:"required"`
	Code         string              `json:"code" validate:"required,max=50"`
	Type         SensorType          `json:"type" validate:"required,oneof=moisture temperature multiparameter"`
	Model        *string             `json:"model,omitempty" validate:"omitempty,max=100"`
	Manufacturer *string             `json:"manufacturer,omitempty" validate:"omitempty,max=100"`
	InstalledAt  *time.Time          `json:"installed_at,omitempty"`
	Latitude     decimal.NullDecimal `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    decimal.NullDecimal `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}
