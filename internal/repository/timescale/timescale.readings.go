// FilePath: internal/repository/timescale/timescale.readings.go
package timescale

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agrosense/plothub/internal/database"
	"github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/models"
	"github.com/agrosense/plothub/internal/repository"
	"github.com/shopspring/decimal"
)

type ReadingRepo struct {
	db database.DB
}

func NewReadingRepository(db database.DB) (*ReadingRepo, error) {
	repo := &ReadingRepo{db: db}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema() error {
	// Readings are append-only; the hypertable is partitioned on observed_at.
	queries := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT NOT NULL,
			plot_id TEXT NOT NULL,
			sensor_id TEXT,
			sensor_code TEXT,
			soil_moisture NUMERIC(5,2),
			temperature NUMERIC(5,2),
			precipitation NUMERIC(5,2),
			air_humidity NUMERIC(5,2),
			wind_speed NUMERIC(5,2),
			wind_direction VARCHAR(10),
			solar_radiation NUMERIC(7,2),
			pressure NUMERIC(6,2),
			observed_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (id, observed_at)
		)`,
		`SELECT create_hypertable('readings', 'observed_at',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_plot_observed
			ON readings(plot_id, observed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_sensor_id
			ON readings(sensor_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize readings schema", err)
		}
	}
	return nil
}

const readingColumns = `
	id, plot_id, sensor_id, sensor_code,
	soil_moisture, temperature, precipitation, air_humidity,
	wind_speed, wind_direction, solar_radiation, pressure,
	observed_at, created_at`

func (r *ReadingRepo) Insert(ctx context.Context, reading *models.Reading) error {
	query := `
		INSERT INTO readings (
			id, plot_id, sensor_id, sensor_code,
			soil_moisture, temperature, precipitation, air_humidity,
			wind_speed, wind_direction, solar_radiation, pressure,
			observed_at, created_at
		) VALUES (
			:id, :plot_id, :sensor_id, :sensor_code,
			:soil_moisture, :temperature, :precipitation, :air_humidity,
			:wind_speed, :wind_direction, :solar_radiation, :pressure,
			:observed_at, :created_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, reading)
	if err != nil {
		return errors.NewDatabaseError("failed to insert reading", err)
	}
	return nil
}

func (r *ReadingRepo) InsertMany(ctx context.Context, readings []*models.Reading) error {
	for _, reading := range readings {
		if err := r.Insert(ctx, reading); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReadingRepo) Get(ctx context.Context, id string) (*models.Reading, error) {
	reading := &models.Reading{}
	query := fmt.Sprintf(`SELECT %s FROM readings WHERE id = $1`, readingColumns)

	err := r.db.GetDB().GetContext(ctx, reading, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("reading not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get reading", err)
	}
	return reading, nil
}

func (r *ReadingRepo) ListByPlot(ctx context.Context, plotID string, limit int) ([]*models.Reading, error) {
	readings := []*models.Reading{}
	query := fmt.Sprintf(`
		SELECT %s FROM readings
		WHERE plot_id = $1
		ORDER BY observed_at DESC
		LIMIT $2`, readingColumns)

	err := r.db.GetDB().SelectContext(ctx, &readings, query, plotID, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list readings by plot", err)
	}
	return readings, nil
}

func (r *ReadingRepo) ListBySensor(ctx context.Context, sensorID string, limit int) ([]*models.Reading, error) {
	readings := []*models.Reading{}
	query := fmt.Sprintf(`
		SELECT %s FROM readings
		WHERE sensor_id = $1
		ORDER BY observed_at DESC
		LIMIT $2`, readingColumns)

	err := r.db.GetDB().SelectContext(ctx, &readings, query, sensorID, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list readings by sensor", err)
	}
	return readings, nil
}

// ListByRange fetches readings with observed_at in [start, end], both ends
// inclusive, ordered ascending for downstream bucketing.
func (r *ReadingRepo) ListByRange(ctx context.Context, plotID string, start, end time.Time) ([]*models.Reading, error) {
	readings := []*models.Reading{}
	query := fmt.Sprintf(`
		SELECT %s FROM readings
		WHERE plot_id = $1 AND observed_at BETWEEN $2 AND $3
		ORDER BY observed_at ASC`, readingColumns)

	err := r.db.GetDB().SelectContext(ctx, &readings, query, plotID, start, end)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list readings by range", err)
	}
	return readings, nil
}

func (r *ReadingRepo) Latest(ctx context.Context, plotID string) (*models.Reading, error) {
	reading := &models.Reading{}
	query := fmt.Sprintf(`
		SELECT %s FROM readings
		WHERE plot_id = $1
		ORDER BY observed_at DESC
		LIMIT 1`, readingColumns)

	err := r.db.GetDB().GetContext(ctx, reading, query, plotID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no readings for plot", err)
		}
		return nil, errors.NewDatabaseError("failed to get latest reading", err)
	}
	return reading, nil
}

func (r *ReadingRepo) ListSince(ctx context.Context, plotID string, since time.Time) ([]*models.Reading, error) {
	readings := []*models.Reading{}
	query := fmt.Sprintf(`
		SELECT %s FROM readings
		WHERE plot_id = $1 AND observed_at >= $2
		ORDER BY observed_at DESC`, readingColumns)

	err := r.db.GetDB().SelectContext(ctx, &readings, query, plotID, since)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list readings since", err)
	}
	return readings, nil
}

// MeanSince computes AVG over one metric column in the rolling window.
// The column name is validated against a closed set before interpolation.
func (r *ReadingRepo) MeanSince(ctx context.Context, plotID string, metric repository.MetricColumn, since time.Time) (decimal.NullDecimal, error) {
	switch metric {
	case repository.MetricSoilMoisture, repository.MetricTemperature:
	default:
		return decimal.NullDecimal{}, errors.NewInternalError(
			fmt.Sprintf("unsupported metric column %q", metric), nil)
	}

	var mean decimal.NullDecimal
	query := fmt.Sprintf(`
		SELECT AVG(%s) FROM readings
		WHERE plot_id = $1 AND observed_at >= $2`, metric)

	err := r.db.GetDB().GetContext(ctx, &mean, query, plotID, since)
	if err != nil {
		return decimal.NullDecimal{}, errors.NewDatabaseError("failed to compute window mean", err)
	}
	return mean, nil
}
