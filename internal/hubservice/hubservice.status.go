// FilePath: internal/hubservice/hubservice.status.go
package hubservice

import (
	"context"
	"time"

	"github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/models"
	"github.com/agrosense/plothub/internal/repository"
	"github.com/shopspring/decimal"
)

// statusWindow is the rolling window behind the snapshot's 24h figures.
const statusWindow = 24 * time.Hour

// GetPlotStatus builds a rolling snapshot from independent reads. The reads
// run in sequence without a transaction; a concurrent ingestion may land
// between them. Any store failure fails the whole snapshot.
func (s *HubService) GetPlotStatus(ctx context.Context, plotID string) (*models.PlotStatus, error) {
	now := time.Now().UTC()
	since := now.Add(-statusWindow)

	status := &models.PlotStatus{
		PlotID:              plotID,
		Precipitation24hSum: decimal.Zero,
		GeneratedAt:         now,
	}

	latest, err := s.Readings.Latest(ctx, plotID)
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	if latest != nil {
		status.LastReadingAt = &latest.ObservedAt
		status.LastSoilMoisture = latest.SoilMoisture
		status.LastTemperature = latest.Temperature
		status.LastPrecipitation = latest.Precipitation
		status.LastAirHumidity = latest.AirHumidity
	}

	soilMean, err := s.Readings.MeanSince(ctx, plotID, repository.MetricSoilMoisture, since)
	if err != nil {
		return nil, err
	}
	status.SoilMoisture24hMean = soilMean

	tempMean, err := s.Readings.MeanSince(ctx, plotID, repository.MetricTemperature, since)
	if err != nil {
		return nil, err
	}
	status.Temperature24hMean = tempMean

	sensors, err := s.Sensors.ListByPlot(ctx, plotID)
	if err != nil {
		return nil, err
	}
	status.TotalSensors = len(sensors)
	for _, sensor := range sensors {
		if sensor.Active {
			status.ActiveSensors++
		}
	}

	// The precipitation sum stays zero over an empty window while the two
	// means above stay null. Consumers rely on that difference.
	window, err := s.Readings.ListSince(ctx, plotID, since)
	if err != nil {
		return nil, err
	}
	for _, reading := range window {
		if reading.Precipitation.Valid {
			status.Precipitation24hSum = status.Precipitation24hSum.Add(reading.Precipitation.Decimal)
		}
	}

	return status, nil
}
