// FilePath: api/resources/api.resource.readings.go
package resources

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/hubservice"
	"github.com/agrosense/plothub/internal/models"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// ReadingHandlers encapsulates the reading-related HTTP handlers
type ReadingHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Ingest a reading
// @Description Validate, persist and publish a single sensor reading
// @Tags readings
// @Accept json
// @Produce json
// @Param reading body models.ReadingDraft true "Reading payload"
// @Success 201 {object} models.Reading
// @Failure 400 {object} errors.APIError
// @Router /readings [post]
func (h *ReadingHandlers) IngestReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var draft models.ReadingDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	reading, err := h.hubservice.IngestReading(r.Context(), &draft)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to ingest reading").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, reading)
}

// @Summary Ingest a batch of readings
// @Description Ingest up to 1000 readings sequentially, failing fast without rollback
// @Tags readings
// @Accept json
// @Produce json
// @Param readings body []models.ReadingDraft true "Reading payloads"
// @Success 201 {array} models.Reading
// @Failure 400 {object} errors.APIError
// @Router /readings/batch [post]
func (h *ReadingHandlers) IngestBatch(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var drafts []*models.ReadingDraft
	if err := json.NewDecoder(r.Body).Decode(&drafts); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	ingested, err := h.hubservice.IngestBatch(r.Context(), drafts)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "batch ingestion failed").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, ingested)
}

// @Summary Get a reading by ID
// @Tags readings
// @Produce json
// @Param id path string true "Reading ID"
// @Success 200 {object} models.Reading
// @Failure 404 {object} errors.APIError
// @Router /readings/{id} [get]
func (h *ReadingHandlers) GetReading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	reading, err := h.hubservice.GetReading(r.Context(), vars["id"])
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to get reading").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, reading)
}

// @Summary List readings by filters
// @Description List readings filtered by plot, sensor and time range
// @Tags readings
// @Produce json
// @Param plot_id query string false "Plot ID"
// @Param sensor_id query string false "Sensor ID"
// @Param start query string false "Start time (RFC3339)"
// @Param end query string false "End time (RFC3339)"
// @Param limit query int false "Maximum results"
// @Success 200 {array} models.Reading
// @Failure 400 {object} errors.APIError
// @Router /readings [get]
func (h *ReadingHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.ReadingFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	readings, err := h.hubservice.ListReadingsWithFilters(r.Context(), filters)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err, "failed to list readings").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// Helper functions and types

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(time.Time{}, func(value string) reflect.Value {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(parsed)
	})
	return decoder
}

func getPaginationParams(r *http.Request) (offset, limit int) {
	query := r.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	limit, _ = strconv.Atoi(query.Get("limit"))

	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return offset, limit
}

func getLimitParam(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

// parseRequiredRange reads the start and end query parameters as RFC3339.
func parseRequiredRange(r *http.Request) (time.Time, time.Time, *errors.APIError) {
	query := r.URL.Query()

	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewValidationError("start must be a valid RFC3339 timestamp", err)
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewValidationError("end must be a valid RFC3339 timestamp", err)
	}
	return start, end, nil
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
