// FilePath: api/resources/api.resource.plots.go
package resources

import (
	"net/http"

	"github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/hubservice"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// PlotHandlers encapsulates the plot-scoped HTTP handlers
type PlotHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary List readings for a plot
// @Tags plots
// @Produce json
// @Param plotId path string true "Plot ID"
// @Param limit query int false "Maximum results"
// @Success 200 {array} models.Reading
// @Router /plots/{plotId}/readings [get]
func (h *PlotHandlers) ListPlotReadings(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	readings, err := h.hubservice.ListReadingsByPlot(r.Context(), vars["plotId"], getLimitParam(r))
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to list plot readings").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary List readings for a plot in a time range
// @Description Readings with observed_at in [start, end], both ends inclusive
// @Tags plots
// @Produce json
// @Param plotId path string true "Plot ID"
// @Param start query string true "Start time (RFC3339)"
// @Param end query string true "End time (RFC3339)"
// @Success 200 {array} models.Reading
// @Failure 400 {object} errors.APIError
// @Router /plots/{plotId}/readings/range [get]
func (h *PlotHandlers) ListPlotReadingsRange(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	start, end, apiErr := parseRequiredRange(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	readings, err := h.hubservice.ListReadingsByRange(r.Context(), vars["plotId"], start, end)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to list plot readings").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary Get the latest reading for a plot
// @Tags plots
// @Produce json
// @Param plotId path string true "Plot ID"
// @Success 200 {object} models.Reading
// @Failure 404 {object} errors.APIError
// @Router /plots/{plotId}/readings/latest [get]
func (h *PlotHandlers) GetLatestPlotReading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	reading, err := h.hubservice.GetLatestReading(r.Context(), vars["plotId"])
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to get latest reading").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, reading)
}

// @Summary List the last 24 hours of readings for a plot
// @Tags plots
// @Produce json
// @Param plotId path string true "Plot ID"
// @Success 200 {array} models.Reading
// @Router /plots/{plotId}/readings/last24h [get]
func (h *PlotHandlers) ListPlotReadingsLast24h(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	readings, err := h.hubservice.ListReadingsLast24h(r.Context(), vars["plotId"])
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to list plot readings").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary Get a plot status snapshot
// @Description Rolling 24h snapshot: latest reading, window means, sensor counts and precipitation sum
// @Tags plots
// @Produce json
// @Param plotId path string true "Plot ID"
// @Success 200 {object} models.PlotStatus
// @Failure 500 {object} errors.APIError
// @Router /plots/{plotId}/status [get]
func (h *PlotHandlers) GetPlotStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	status, err := h.hubservice.GetPlotStatus(r.Context(), vars["plotId"])
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to build plot status").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// @Summary Aggregate readings for a plot
// @Description Hour or day buckets over [start, end], both ends inclusive
// @Tags plots
// @Produce json
// @Param plotId path string true "Plot ID"
// @Param start query string true "Start time (RFC3339)"
// @Param end query string true "End time (RFC3339)"
// @Param granularity query string true "Bucket granularity (hour or day)"
// @Success 200 {array} models.AggregateBucket
// @Failure 400 {object} errors.APIError
// @Router /plots/{plotId}/aggregate [get]
func (h *PlotHandlers) GetPlotAggregate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	start, end, apiErr := parseRequiredRange(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	granularity := r.URL.Query().Get("granularity")

	buckets, err := h.hubservice.AggregateReadings(r.Context(), vars["plotId"], start, end, granularity)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to aggregate readings").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, buckets)
}

// @Summary List sensors assigned to a plot
// @Tags plots
// @Produce json
// @Param plotId path string true "Plot ID"
// @Success 200 {array} models.Sensor
// @Router /plots/{plotId}/sensors [get]
func (h *PlotHandlers) ListPlotSensors(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	sensors, err := h.hubservice.ListSensorsByPlot(r.Context(), vars["plotId"])
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to list plot sensors").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensors)
}
