// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agrosense/plothub/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// MetricColumn names a reading metric column usable in window reductions.
// Repositories must reject values outside the declared set.
type MetricColumn string

const (
	MetricSoilMoisture MetricColumn = "soil_moisture"
	MetricTemperature  MetricColumn = "temperature"
)

// SensorRepository defines the interface for the sensor directory
type SensorRepository interface {
	Create(ctx context.Context, sensor *models.Sensor) error
	Get(ctx context.Context, id string) (*models.Sensor, error)
	GetByCode(ctx context.Context, code string) (*models.Sensor, error)
	List(ctx context.Context, offset, limit int) ([]*models.Sensor, error)
	ListByPlot(ctx context.Context, plotID string) ([]*models.Sensor, error)
	ListActive(ctx context.Context) ([]*models.Sensor, error)
	Update(ctx context.Context, sensor *models.Sensor) error
	UpdateLastReading(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// ReadingRepository defines the interface for the append-only reading store
type ReadingRepository interface {
	Insert(ctx context.Context, reading *models.Reading) error
	InsertMany(ctx context.Context, readings []*models.Reading) error
	Get(ctx context.Context, id string) (*models.Reading, error)
	ListByPlot(ctx context.Context, plotID string, limit int) ([]*models.Reading, error)
	ListBySensor(ctx context.Context, sensorID string, limit int) ([]*models.Reading, error)
	ListByRange(ctx context.Context, plotID string, start, end time.Time) ([]*models.Reading, error)
	Latest(ctx context.Context, plotID string) (*models.Reading, error)
	ListSince(ctx context.Context, plotID string, since time.Time) ([]*models.Reading, error)
	MeanSince(ctx context.Context, plotID string, metric MetricColumn, since time.Time) (decimal.NullDecimal, error)
}
