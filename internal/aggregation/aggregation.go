// FilePath: internal/aggregation/aggregation.go

// Package aggregation reduces raw plot readings into hour or day buckets.
// All arithmetic is fixed-point; a bucket metric stays null unless at least
// one contributing reading carries that metric.
package aggregation

import (
	"sort"
	"time"

	"github.com/agrosense/plothub/internal/models"
	"github.com/shopspring/decimal"
)

type Granularity string

const (
	Hour Granularity = "hour"
	Day  Granularity = "day"
)

// meanScale is the source column scale (2) plus four guard digits.
const meanScale = 6

// ParseGranularity maps the wire value to a Granularity.
func ParseGranularity(s string) (Granularity, bool) {
	switch Granularity(s) {
	case Hour, Day:
		return Granularity(s), true
	}
	return "", false
}

// BucketStart truncates t to the start of its hour or calendar day in the
// timestamp's own location. No timezone conversion happens here.
func BucketStart(t time.Time, g Granularity) time.Time {
	if g == Day {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// Aggregate groups readings into buckets and reduces each metric. Buckets
// are returned ascending by start; an empty input yields an empty slice.
func Aggregate(plotID string, readings []*models.Reading, g Granularity) []models.AggregateBucket {
	groups := make(map[int64][]*models.Reading)
	starts := make(map[int64]time.Time)

	for _, reading := range readings {
		start := BucketStart(reading.ObservedAt, g)
		key := start.UnixNano()
		groups[key] = append(groups[key], reading)
		starts[key] = start
	}

	keys := make([]int64, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buckets := make([]models.AggregateBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, reduce(plotID, starts[key], groups[key], g))
	}
	return buckets
}

func reduce(plotID string, start time.Time, readings []*models.Reading, g Granularity) models.AggregateBucket {
	soil := collect(readings, func(r *models.Reading) decimal.NullDecimal { return r.SoilMoisture })
	temp := collect(readings, func(r *models.Reading) decimal.NullDecimal { return r.Temperature })
	precip := collect(readings, func(r *models.Reading) decimal.NullDecimal { return r.Precipitation })
	humidity := collect(readings, func(r *models.Reading) decimal.NullDecimal { return r.AirHumidity })
	wind := collect(readings, func(r *models.Reading) decimal.NullDecimal { return r.WindSpeed })
	radiation := collect(readings, func(r *models.Reading) decimal.NullDecimal { return r.SolarRadiation })
	pressure := collect(readings, func(r *models.Reading) decimal.NullDecimal { return r.Pressure })

	return models.AggregateBucket{
		PlotID:           plotID,
		BucketStart:      start,
		Granularity:      string(g),
		Count:            len(readings),
		SoilMoistureMean: mean(soil),
		SoilMoistureMin:  min(soil),
		SoilMoistureMax:  max(soil),
		TemperatureMean:  mean(temp),
		TemperatureMin:   min(temp),
		TemperatureMax:   max(temp),
		PrecipitationSum: sum(precip),
		AirHumidityMean:  mean(humidity),
		WindSpeedMean:    mean(wind),
		SolarRadMean:     mean(radiation),
		PressureMean:     mean(pressure),
	}
}

// collect pulls the present values of one metric out of a bucket's readings.
func collect(readings []*models.Reading, field func(*models.Reading) decimal.NullDecimal) []decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(readings))
	for _, reading := range readings {
		if v := field(reading); v.Valid {
			values = append(values, v.Decimal)
		}
	}
	return values
}

func mean(values []decimal.Decimal) decimal.NullDecimal {
	if len(values) == 0 {
		return decimal.NullDecimal{}
	}
	total := decimal.Sum(values[0], values[1:]...)
	divisor := decimal.NewFromInt(int64(len(values)))
	return decimal.NullDecimal{Decimal: total.DivRound(divisor, meanScale), Valid: true}
}

func min(values []decimal.Decimal) decimal.NullDecimal {
	if len(values) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.Min(values[0], values[1:]...), Valid: true}
}

func max(values []decimal.Decimal) decimal.NullDecimal {
	if len(values) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.Max(values[0], values[1:]...), Valid: true}
}

func sum(values []decimal.Decimal) decimal.NullDecimal {
	if len(values) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.Sum(values[0], values[1:]...), Valid: true}
}
