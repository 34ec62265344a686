// FilePath: internal/models/api.models.filters.go
package models

import "time"

// ReadingFilters defines the available filter options for reading queries.
// Precedence when combined: plot+range, then sensor, then plot alone.
type ReadingFilters struct {
	PlotID   string     `json:"plot_id" schema:"plot_id"`
	SensorID string     `json:"sensor_id" schema:"sensor_id"`
	Start    *time.Time `json:"start" schema:"start"`
	End      *time.Time `json:"end" schema:"end"`
	Limit    int        `json:"limit" schema:"limit"`
}
