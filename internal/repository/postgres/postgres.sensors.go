// FilePath: internal/repository/postgres/postgres.sensors.go
package postgres

import (
	"context"
	"database/sql"
	goerrors "errors"
	"time"

	"github.com/agrosense/plothub/internal/database"
	"github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/models"
	"github.com/lib/pq"
)

type SensorRepo struct {
	db database.DB
}

func NewSensorRepository(db database.DB) (*SensorRepo, error) {
	repo := &SensorRepo{db: db}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SensorRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sensors (
			id TEXT PRIMARY KEY,
			plot_id TEXT NOT NULL,
			code VARCHAR(50) UNIQUE NOT NULL,
			type VARCHAR(50) NOT NULL,
			model VARCHAR(100),
			manufacturer VARCHAR(100),
			installed_at TIMESTAMPTZ,
			latitude NUMERIC(10,8),
			longitude NUMERIC(11,8),
			active BOOLEAN NOT NULL DEFAULT true,
			last_reading_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sensors_plot_id ON sensors(plot_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize sensors schema", err)
		}
	}
	return nil
}

func (r *SensorRepo) Create(ctx context.Context, sensor *models.Sensor) error {
	query := `
		INSERT INTO sensors (
			id, plot_id, code, type, model, manufacturer,
			installed_at, latitude, longitude, active,
			last_reading_at, created_at, updated_at
		) VALUES (
			:id, :plot_id, :code, :type, :model, :manufacturer,
			:installed_at, :latitude, :longitude, :active,
			:last_reading_at, :created_at, :updated_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, sensor)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewValidationError("sensor code already registered", err)
		}
		return errors.NewDatabaseError("failed to create sensor", err)
	}
	return nil
}

func (r *SensorRepo) Get(ctx context.Context, id string) (*models.Sensor, error) {
	sensor := &models.Sensor{}
	query := `SELECT * FROM sensors WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, sensor, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("sensor not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get sensor", err)
	}
	return sensor, nil
}

func (r *SensorRepo) GetByCode(ctx context.Context, code string) (*models.Sensor, error) {
	sensor := &models.Sensor{}
	query := `SELECT * FROM sensors WHERE code = $1`

	err := r.db.GetDB().GetContext(ctx, sensor, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("sensor not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get sensor by code", err)
	}
	return sensor, nil
}

func (r *SensorRepo) List(ctx context.Context, offset, limit int) ([]*models.Sensor, error) {
	sensors := []*models.Sensor{}
	query := `SELECT * FROM sensors ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	err := r.db.GetDB().SelectContext(ctx, &sensors, query, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list sensors", err)
	}
	return sensors, nil
}

func (r *SensorRepo) ListByPlot(ctx context.Context, plotID string) ([]*models.Sensor, error) {
	sensors := []*models.Sensor{}
	query := `SELECT * FROM sensors WHERE plot_id = $1 ORDER BY created_at DESC`

	err := r.db.GetDB().SelectContext(ctx, &sensors, query, plotID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list sensors", err)
	}
	return sensors, nil
}

func (r *SensorRepo) ListActive(ctx context.Context) ([]*models.Sensor, error) {
	sensors := []*models.Sensor{}
	query := `SELECT * FROM sensors WHERE active = true ORDER BY created_at DESC`

	err := r.db.GetDB().SelectContext(ctx, &sensors, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list active sensors", err)
	}
	return sensors, nil
}

func (r *SensorRepo) Update(ctx context.Context, sensor *models.Sensor) error {
	query := `
		UPDATE sensors SET
			plot_id = :plot_id,
			code = :code,
			type = :type,
			model = :model,
			manufacturer = :manufacturer,
			installed_at = :installed_at,
			latitude = :latitude,
			longitude = :longitude,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, sensor)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewValidationError("sensor code already registered", err)
		}
		return errors.NewDatabaseError("failed to update sensor", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("sensor not found", nil)
	}

	return nil
}

// UpdateLastReading records the observation time of the newest accepted
// reading. Last writer by arrival wins; there is no monotonic guard.
func (r *SensorRepo) UpdateLastReading(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE sensors SET
			last_reading_at = $1,
			updated_at = $2
		WHERE id = $3`

	result, err := r.db.GetDB().ExecContext(ctx, query, at, time.Now().UTC(), id)
	if err != nil {
		return errors.NewDatabaseError("failed to update last reading time", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("sensor not found", nil)
	}

	return nil
}

func (r *SensorRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := `
		UPDATE sensors SET
			active = $1,
			updated_at = $2
		WHERE id = $3`

	result, err := r.db.GetDB().ExecContext(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		return errors.NewDatabaseError("failed to set sensor active state", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("sensor not found", nil)
	}

	return nil
}

func (r *SensorRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sensors WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete sensor", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("sensor not found", nil)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if goerrors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
