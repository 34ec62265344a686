// FilePath: internal/models/models.composite.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlotStatus is a rolling snapshot of a plot built from independent reads.
// Precipitation24hSum is zero, not null, when the window is empty; the two
// 24h means stay null in that case.
type PlotStatus struct {
	PlotID              string              `json:"plot_id"`
	LastReadingAt       *time.Time          `json:"last_reading_at,omitempty"`
	TotalSensors        int                 `json:"total_sensors"`
	ActiveSensors       int                 `json:"active_sensors"`
	LastSoilMoisture    decimal.NullDecimal `json:"last_soil_moisture"`
	LastTemperature     decimal.NullDecimal `json:"last_temperature"`
	LastPrecipitation   decimal.NullDecimal `json:"last_precipitation"`
	LastAirHumidity     decimal.NullDecimal `json:"last_air_humidity"`
	SoilMoisture24hMean decimal.NullDecimal `json:"soil_moisture_24h_mean"`
	Temperature24hMean  decimal.NullDecimal `json:"temperature_24h_mean"`
	Precipitation24hSum decimal.Decimal     `json:"precipitation_24h_sum"`
	GeneratedAt         time.Time           `json:"generated_at"`
}

// SensorWithReadings combines a sensor with its most recent readings.
type SensorWithReadings struct {
	Sensor   *Sensor    `json:"sensor"`
	Readings []*Reading `json:"readings"`
}
