// FilePath: api/resources/api.resource.sensors.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/hubservice"
	"github.com/agrosense/plothub/internal/models"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// SensorHandlers encapsulates the sensor-directory HTTP handlers
type SensorHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Register a new sensor
// @Tags sensors
// @Accept json
// @Produce json
// @Param sensor body models.SensorDraft true "Sensor details"
// @Success 201 {object} models.Sensor
// @Failure 400 {object} errors.APIError
// @Router /sensors [post]
func (h *SensorHandlers) CreateSensor(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var draft models.SensorDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	sensor, err := h.hubservice.CreateSensor(r.Context(), &draft)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to create sensor").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, sensor)
}

// @Summary List sensors
// @Tags sensors
// @Produce json
// @Param offset query int false "Pagination offset"
// @Param limit query int false "Page size"
// @Success 200 {array} models.Sensor
// @Router /sensors [get]
func (h *SensorHandlers) ListSensors(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	offset, limit := getPaginationParams(r)

	sensors, err := h.hubservice.ListSensors(r.Context(), offset, limit)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to list sensors").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensors)
}

// @Summary List active sensors
// @Tags sensors
// @Produce json
// @Success 200 {array} models.Sensor
// @Router /sensors/active [get]
func (h *SensorHandlers) ListActiveSensors(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	sensors, err := h.hubservice.ListActiveSensors(r.Context())
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to list active sensors").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensors)
}

// @Summary Get a sensor by ID
// @Tags sensors
// @Produce json
// @Param id path string true "Sensor ID"
// @Success 200 {object} models.Sensor
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [get]
func (h *SensorHandlers) GetSensor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	sensor, err := h.hubservice.GetSensor(r.Context(), vars["id"])
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to get sensor").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensor)
}

// @Summary Get a sensor by code
// @Tags sensors
// @Produce json
// @Param code path string true "Sensor code"
// @Success 200 {object} models.Sensor
// @Failure 404 {object} errors.APIError
// @Router /sensors/code/{code} [get]
func (h *SensorHandlers) GetSensorByCode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	sensor, err := h.hubservice.GetSensorByCode(r.Context(), vars["code"])
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to get sensor").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensor)
}

// @Summary Update a sensor
// @Tags sensors
// @Accept json
// @Produce json
// @Param id path string true "Sensor ID"
// @Param sensor body models.SensorDraft true "Sensor details"
// @Success 200 {object} models.Sensor
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [put]
func (h *SensorHandlers) UpdateSensor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	var draft models.SensorDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	sensor, err := h.hubservice.UpdateSensor(r.Context(), vars["id"], &draft)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to update sensor").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensor)
}

// @Summary Activate or deactivate a sensor
// @Tags sensors
// @Accept json
// @Produce json
// @Param id path string true "Sensor ID"
// @Param state body object true "Active state"
// @Success 200 {object} models.Sensor
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id}/active [patch]
func (h *SensorHandlers) SetSensorActive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	var payload struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	sensor, err := h.hubservice.SetSensorActive(r.Context(), vars["id"], payload.Active)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to set sensor active state").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensor)
}

// @Summary Delete a sensor
// @Tags sensors
// @Param id path string true "Sensor ID"
// @Success 204
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [delete]
func (h *SensorHandlers) DeleteSensor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	if err := h.hubservice.DeleteSensor(r.Context(), vars["id"]); err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to delete sensor").WithRequestID(requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Get a sensor with its recent readings
// @Tags sensors
// @Produce json
// @Param id path string true "Sensor ID"
// @Param limit query int false "Number of readings (default 10)"
// @Success 200 {object} models.SensorWithReadings
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id}/readings [get]
func (h *SensorHandlers) GetSensorReadings(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	composed, err := h.hubservice.GetSensorWithReadings(r.Context(), vars["id"], getLimitParam(r))
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to get sensor readings").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, composed)
}
