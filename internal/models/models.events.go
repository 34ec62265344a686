// FilePath: internal/models/models.events.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReadingEvent is the message published after a reading is persisted.
// Delivery is fire-and-forget; consumers must tolerate duplicates and gaps.
type ReadingEvent struct {
	EventID        string              `json:"event_id"`
	EventTime      time.Time           `json:"event_time"`
	ReadingID      string              `json:"reading_id"`
	PlotID         string              `json:"plot_id"`
	SensorID       *string             `json:"sensor_id,omitempty"`
	SensorCode     *string             `json:"sensor_code,omitempty"`
	SoilMoisture   decimal.NullDecimal `json:"soil_moisture"`
	Temperature    decimal.NullDecimal `json:"temperature"`
	Precipitation  decimal.NullDecimal `json:"precipitation"`
	AirHumidity    decimal.NullDecimal `json:"air_humidity"`
	WindSpeed      decimal.NullDecimal `json:"wind_speed"`
	SolarRadiation decimal.NullDecimal `json:"solar_radiation"`
	Pressure       decimal.NullDecimal `json:"pressure"`
	ObservedAt     time.Time           `json:"observed_at"`
}
