// FilePath: internal/models/models.aggregate.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AggregateBucket represents one hour or one calendar day of reduced readings
// for a plot. A metric field is null when no reading in the bucket carried
// that metric; Count always reflects the number of contributing readings.
type AggregateBucket struct {
	PlotID           string              `json:"plot_id"`
	BucketStart      time.Time           `json:"bucket_start"`
	Granularity      string              `json:"granularity"`
	Count            int                 `json:"count"`
	SoilMoistureMean decimal.NullDecimal `json:"soil_moisture_mean"`
	SoilMoistureMin  decimal.NullDecimal `json:"soil_moisture_min"`
	SoilMoistureMax  decimal.NullDecimal `json:"soil_moisture_max"`
	TemperatureMean  decimal.NullDecimal `json:"temperature_mean"`
	TemperatureMin   decimal.NullDecimal `json:"temperature_min"`
	TemperatureMax   decimal.NullDecimal `json:"temperature_max"`
	PrecipitationSum decimal.NullDecimal `json:"precipitation_sum"`
	AirHumidityMean  decimal.NullDecimal `json:"air_humidity_mean"`
	WindSpeedMean    decimal.NullDecimal `json:"wind_speed_mean"`
	SolarRadMean     decimal.NullDecimal `json:"solar_radiation_mean"`
	PressureMean     decimal.NullDecimal `json:"pressure_mean"`
}
