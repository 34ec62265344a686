// FilePath: internal/hubservice/hubservice.readings.go
package hubservice

import (
	"context"
	"fmt"
	"time"

	"github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const (
	// maxBatchSize caps a single batch ingestion request.
	maxBatchSize = 1000
	// maxListLimit caps how many rows any single list query may return.
	maxListLimit = 1000
	// defaultListLimit applies when a query does not name its own limit.
	defaultListLimit = 100
)

// IngestReading validates a draft, resolves its sensor, persists the reading
// and publishes the event. Persistence decides the outcome; the last-seen
// update and the publish are best-effort.
func (s *HubService) IngestReading(ctx context.Context, draft *models.ReadingDraft) (*models.Reading, error) {
	if err := s.validator.ValidateReadingDraft(draft); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	observedAt := now
	if draft.ObservedAt != nil {
		observedAt = *draft.ObservedAt
	}

	reading := &models.Reading{
		ID:             nuts.NID("rd", 12),
		PlotID:         draft.PlotID,
		SoilMoisture:   draft.SoilMoisture,
		Temperature:    draft.Temperature,
		Precipitation:  draft.Precipitation,
		AirHumidity:    draft.AirHumidity,
		WindSpeed:      draft.WindSpeed,
		WindDirection:  draft.WindDirection,
		SolarRadiation: draft.SolarRadiation,
		Pressure:       draft.Pressure,
		ObservedAt:     observedAt,
		CreatedAt:      now,
	}

	if sensor := s.resolveSensor(ctx, draft); sensor != nil {
		reading.SensorID = &sensor.ID
		reading.SensorCode = &sensor.Code

		if err := s.Sensors.UpdateLastReading(ctx, sensor.ID, observedAt); err != nil {
			nuts.L.Warnf("[ReadingService] Failed to update last reading time for sensor %s: %v", sensor.ID, err)
		}
	}

	if err := s.Readings.Insert(ctx, reading); err != nil {
		return nil, err
	}

	s.publishReadingEvent(reading)

	nuts.L.Infof("[ReadingService] Ingested reading %s for plot %s", reading.ID, reading.PlotID)
	return reading, nil
}

// IngestBatch ingests drafts sequentially and fails fast. Readings persisted
// before a failure stay persisted; later drafts are never attempted.
func (s *HubService) IngestBatch(ctx context.Context, drafts []*models.ReadingDraft) ([]*models.Reading, error) {
	if len(drafts) == 0 {
		return nil, errors.NewValidationError("batch must contain at least one reading", nil)
	}
	if len(drafts) > maxBatchSize {
		return nil, errors.NewValidationError(
			fmt.Sprintf("batch exceeds the maximum of %d readings", maxBatchSize), nil)
	}

	ingested := make([]*models.Reading, 0, len(drafts))
	for i, draft := range drafts {
		reading, err := s.IngestReading(ctx, draft)
		if err != nil {
			return ingested, errors.AsAPIError(err, "batch ingestion failed").
				WithDetails(fmt.Sprintf("failed at position %d after %d persisted readings", i, len(ingested)))
		}
		ingested = append(ingested, reading)
	}
	return ingested, nil
}

// resolveSensor identifies the reporting sensor by id, else by code through
// the cache. Resolution failures leave the reading unattributed.
func (s *HubService) resolveSensor(ctx context.Context, draft *models.ReadingDraft) *models.Sensor {
	if draft.SensorID != nil && *draft.SensorID != "" {
		sensor, err := s.Sensors.Get(ctx, *draft.SensorID)
		if err != nil {
			if !errors.IsNotFound(err) {
				nuts.L.Warnf("[ReadingService] Sensor lookup by id %s failed: %v", *draft.SensorID, err)
			}
			return nil
		}
		return sensor
	}

	if draft.SensorCode == nil || *draft.SensorCode == "" {
		return nil
	}

	code := *draft.SensorCode
	if sensor, ok := s.cache.GetByCode(ctx, code); ok {
		return sensor
	}

	sensor, err := s.Sensors.GetByCode(ctx, code)
	if err != nil {
		if !errors.IsNotFound(err) {
			nuts.L.Warnf("[ReadingService] Sensor lookup by code %s failed: %v", code, err)
		}
		return nil
	}

	s.cache.SetByCode(ctx, sensor)
	return sensor
}

func (s *HubService) publishReadingEvent(reading *models.Reading) {
	event := &models.ReadingEvent{
		EventID:        nuts.NID("ev", 12),
		EventTime:      time.Now().UTC(),
		ReadingID:      reading.ID,
		PlotID:         reading.PlotID,
		SensorID:       reading.SensorID,
		SensorCode:     reading.SensorCode,
		SoilMoisture:   reading.SoilMoisture,
		Temperature:    reading.Temperature,
		Precipitation:  reading.Precipitation,
		AirHumidity:    reading.AirHumidity,
		WindSpeed:      reading.WindSpeed,
		SolarRadiation: reading.SolarRadiation,
		Pressure:       reading.Pressure,
		ObservedAt:     reading.ObservedAt,
	}

	if err := s.publisher.PublishReadingEvent(event); err != nil {
		nuts.L.Warnf("[ReadingService] Failed to publish event for reading %s: %v", reading.ID, err)
	}
}

// GetReading retrieves a single reading by id.
func (s *HubService) GetReading(ctx context.Context, id string) (*models.Reading, error) {
	return s.Readings.Get(ctx, id)
}

// ListReadingsByPlot lists the newest readings for a plot.
func (s *HubService) ListReadingsByPlot(ctx context.Context, plotID string, limit int) ([]*models.Reading, error) {
	return s.Readings.ListByPlot(ctx, plotID, normalizeLimit(limit))
}

// ListReadingsBySensor lists the newest readings reported by a sensor.
func (s *HubService) ListReadingsBySensor(ctx context.Context, sensorID string, limit int) ([]*models.Reading, error) {
	return s.Readings.ListBySensor(ctx, sensorID, normalizeLimit(limit))
}

// ListReadingsByRange lists readings for a plot with observed_at in
// [start, end], both ends inclusive.
func (s *HubService) ListReadingsByRange(ctx context.Context, plotID string, start, end time.Time) ([]*models.Reading, error) {
	if start.After(end) {
		return nil, errors.NewInvalidRangeError("start must not be after end")
	}
	return s.Readings.ListByRange(ctx, plotID, start, end)
}

// GetLatestReading returns the newest reading for a plot.
func (s *HubService) GetLatestReading(ctx context.Context, plotID string) (*models.Reading, error) {
	return s.Readings.Latest(ctx, plotID)
}

// ListReadingsLast24h lists a plot's readings in the rolling 24h window.
func (s *HubService) ListReadingsLast24h(ctx context.Context, plotID string) ([]*models.Reading, error) {
	return s.Readings.ListSince(ctx, plotID, time.Now().UTC().Add(-24*time.Hour))
}

// ListReadingsWithFilters dispatches a filtered query. Precedence: plot with
// a full range, then sensor, then plot alone; no filter yields an empty list.
func (s *HubService) ListReadingsWithFilters(ctx context.Context, filters models.ReadingFilters) ([]*models.Reading, error) {
	limit := normalizeLimit(filters.Limit)

	switch {
	case filters.PlotID != "" && filters.Start != nil && filters.End != nil:
		// The range fetch itself is unbounded; the limit applies to the
		// fetched rows. Callers bound the window, not the row count.
		readings, err := s.ListReadingsByRange(ctx, filters.PlotID, *filters.Start, *filters.End)
		if err != nil {
			return nil, err
		}
		if len(readings) > limit {
			readings = readings[:limit]
		}
		return readings, nil
	case filters.SensorID != "":
		return s.Readings.ListBySensor(ctx, filters.SensorID, limit)
	case filters.PlotID != "":
		return s.Readings.ListByPlot(ctx, filters.PlotID, limit)
	default:
		return []*models.Reading{}, nil
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return defaultListLimit
	}
	return limit
}
