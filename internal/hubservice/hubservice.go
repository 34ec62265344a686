// FilePath: internal/hubservice/hubservice.go
package hubservice

import (
	"github.com/agrosense/plothub/internal/cache"
	"github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/messaging"
	"github.com/agrosense/plothub/internal/repository"
	"github.com/agrosense/plothub/internal/validation"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Sensors   repository.SensorRepository
	Readings  repository.ReadingRepository
	cache     cache.Sensors
	publisher messaging.Publisher
	validator *validation.Validator
}

// New creates a new HubService instance
func New(
	sensors repository.SensorRepository,
	readings repository.ReadingRepository,
	sensorCache cache.Sensors,
	publisher messaging.Publisher,
) *HubService {
	return &HubService{
		Sensors:   sensors,
		Readings:  readings,
		cache:     sensorCache,
		publisher: publisher,
		validator: validation.New(),
	}
}

// Validate checks if all required dependencies are initialized
func (s *HubService) Validate() error {
	if s.Sensors == nil {
		return ErrMissingDependency("sensors repository")
	}
	if s.Readings == nil {
		return ErrMissingDependency("readings repository")
	}
	if s.cache == nil {
		return ErrMissingDependency("sensor cache")
	}
	if s.publisher == nil {
		return ErrMissingDependency("event publisher")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}
