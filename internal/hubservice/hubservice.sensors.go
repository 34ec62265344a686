// FilePath: internal/hubservice/hubservice.sensors.go
package hubservice

import (
	"context"
	"time"

	"github.com/agrosense/plothub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const (
	// defaultSensorReadings is how many recent readings a sensor detail
	// view carries when the caller does not ask for a specific count.
	defaultSensorReadings = 10
	// defaultSensorPage is the page size when a sensor listing does not
	// name its own limit.
	defaultSensorPage = 50
)

// CreateSensor registers a new sensor. New sensors start active.
func (s *HubService) CreateSensor(ctx context.Context, draft *models.SensorDraft) (*models.Sensor, error) {
	if err := s.validator.ValidateSensorDraft(draft); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sensor := &models.Sensor{
		ID:           nuts.NID("sn", 12),
		PlotID:       draft.PlotID,
		Code:         draft.Code,
		Type:         draft.Type,
		Model:        draft.Model,
		Manufacturer: draft.Manufacturer,
		InstalledAt:  draft.InstalledAt,
		Latitude:     draft.Latitude,
		Longitude:    draft.Longitude,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Sensors.Create(ctx, sensor); err != nil {
		return nil, err
	}

	nuts.L.Infof("[SensorService] Created sensor %s (%s) for plot %s", sensor.Code, sensor.ID, sensor.PlotID)
	return sensor, nil
}

// GetSensor retrieves a sensor by id.
func (s *HubService) GetSensor(ctx context.Context, id string) (*models.Sensor, error) {
	return s.Sensors.Get(ctx, id)
}

// GetSensorByCode retrieves a sensor by its unique code.
func (s *HubService) GetSensorByCode(ctx context.Context, code string) (*models.Sensor, error) {
	return s.Sensors.GetByCode(ctx, code)
}

// ListSensors retrieves a paginated list of sensors.
func (s *HubService) ListSensors(ctx context.Context, offset, limit int) ([]*models.Sensor, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultSensorPage
	}
	if offset < 0 {
		offset = 0
	}
	return s.Sensors.List(ctx, offset, limit)
}

// ListSensorsByPlot lists all sensors assigned to a plot.
func (s *HubService) ListSensorsByPlot(ctx context.Context, plotID string) ([]*models.Sensor, error) {
	return s.Sensors.ListByPlot(ctx, plotID)
}

// ListActiveSensors lists every active sensor across all plots.
func (s *HubService) ListActiveSensors(ctx context.Context) ([]*models.Sensor, error) {
	return s.Sensors.ListActive(ctx)
}

// UpdateSensor applies a draft to an existing sensor. The cached code
// lookup is invalidated so the ingest path sees the change.
func (s *HubService) UpdateSensor(ctx context.Context, id string, draft *models.SensorDraft) (*models.Sensor, error) {
	if err := s.validator.ValidateSensorDraft(draft); err != nil {
		return nil, err
	}

	existing, err := s.Sensors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousCode := existing.Code

	existing.PlotID = draft.PlotID
	existing.Code = draft.Code
	existing.Type = draft.Type
	existing.Model = draft.Model
	existing.Manufacturer = draft.Manufacturer
	existing.InstalledAt = draft.InstalledAt
	existing.Latitude = draft.Latitude
	existing.Longitude = draft.Longitude
	existing.UpdatedAt = time.Now().UTC()

	if err := s.Sensors.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, previousCode)
	if existing.Code != previousCode {
		s.cache.Invalidate(ctx, existing.Code)
	}

	nuts.L.Infof("[SensorService] Updated sensor %s", id)
	return existing, nil
}

// SetSensorActive switches a sensor's lifecycle state without touching the
// rest of its record.
func (s *HubService) SetSensorActive(ctx context.Context, id string, active bool) (*models.Sensor, error) {
	sensor, err := s.Sensors.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.Sensors.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	sensor.Active = active
	sensor.UpdatedAt = time.Now().UTC()

	s.cache.Invalidate(ctx, sensor.Code)

	nuts.L.Infof("[SensorService] Sensor %s active state set to %t", id, active)
	return sensor, nil
}

// DeleteSensor removes a sensor from the directory. Its readings stay in
// the store but lose the directory entry behind their sensor_id.
func (s *HubService) DeleteSensor(ctx context.Context, id string) error {
	sensor, err := s.Sensors.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Sensors.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, sensor.Code)

	nuts.L.Infof("[SensorService] Deleted sensor %s", id)
	return nil
}

// GetSensorWithReadings composes a sensor with its most recent readings via
// the indexed by-sensor query.
func (s *HubService) GetSensorWithReadings(ctx context.Context, id string, lastN int) (*models.SensorWithReadings, error) {
	sensor, err := s.Sensors.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if lastN <= 0 {
		lastN = defaultSensorReadings
	}
	readings, err := s.Readings.ListBySensor(ctx, sensor.ID, lastN)
	if err != nil {
		return nil, err
	}

	return &models.SensorWithReadings{Sensor: sensor, Readings: readings}, nil
}
