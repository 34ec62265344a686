// FilePath: internal/models/models.reading.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reading represents a single measurement set reported for a plot. A reading
// is immutable once stored; every metric column is nullable because field
// devices report different subsets depending on sensor type.
type Reading struct {
	ID             string              `json:"id" db:"id"`
	PlotID         string              `json:"plot_id" db:"plot_id"`
	SensorID       *string             `json:"sensor_id,omitempty" db:"sensor_id"`
	SensorCode     *string             `json:"sensor_code,omitempty" db:"sensor_code"`
	SoilMoisture   decimal.NullDecimal `json:"soil_moisture" db:"soil_moisture"`
	Temperature    decimal.NullDecimal `json:"temperature" db:"temperature"`
	Precipitation  decimal.NullDecimal `json:"precipitation" db:"precipitation"`
	AirHumidity    decimal.NullDecimal `json:"air_humidity" db:"air_humidity"`
	WindSpeed      decimal.NullDecimal `json:"wind_speed" db:"wind_speed"`
	WindDirection  *string             `json:"wind_direction,omitempty" db:"wind_direction"`
	SolarRadiation decimal.NullDecimal `json:"solar_radiation" db:"solar_radiation"`
	Pressure       decimal.NullDecimal `json:"pressure" db:"pressure"`
	ObservedAt     time.Time           `json:"observed_at" db:"observed_at"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
}

// HasAnyMetric reports whether at least one numeric metric is present.
func (r *Reading) HasAnyMetric() bool {
	return r.SoilMoisture.Valid || r.Temperature.Valid || r.Precipitation.Valid ||
		r.AirHumidity.Valid || r.WindSpeed.Valid || r.SolarRadiation.Valid ||
		r.Pressure.Valid
}

// ReadingDraft is the inbound payload for creating a reading. Metric range
// rules and the cross-field rules (sensor id or code, at least one metric,
// clock skew) live in internal/validation; only the plain fields carry tags.
type ReadingDraft struct {
	PlotID         string              `json:"plot_id" validate:"required"`
	SensorID       *string             `json:"sensor_id,omitempty"`
	SensorCode     *string             `json:"sensor_code,omitempty" validate:"omitempty,max=50"`
	SoilMoisture   decimal.NullDecimal `json:"soil_moisture"`
	Temperature    decimal.NullDecimal `json:"temperature"`
	Precipitation  decimal.NullDecimal `json:"precipitation"`
	AirHumidity    decimal.NullDecimal `json:"air_humidity"`
	WindSpeed      decimal.NullDecimal `json:"wind_speed"`
	WindDirection  *string             `json:"wind_direction,omitempty" validate:"omitempty,max=10"`
	SolarRadiation decimal.NullDecimal `json:"solar_radiation"`
	Pressure       decimal.NullDecimal `json:"pressure"`
	ObservedAt     *time.Time          `json:"observed_at,omitempty"`
}
