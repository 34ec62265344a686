// FilePath: api/api.router.go
package api

import (
	"net/http"
	"os"

	"github.com/agrosense/plothub/api/resources"
	"github.com/agrosense/plothub/internal/hubservice"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
	handler   http.Handler
}

func NewRouter(svc *hubservice.HubService) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete,
		}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	r.handler = handlers.CombinedLoggingHandler(os.Stdout, cors(r.router))

	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)

	// Readings
	readings := api.PathPrefix("/readings").Subrouter()
	readings.HandleFunc("", r.resources.Readings.ListReadings).Methods(http.MethodGet)
	readings.HandleFunc("", r.resources.Readings.IngestReading).Methods(http.MethodPost)
	readings.HandleFunc("/batch", r.resources.Readings.IngestBatch).Methods(http.MethodPost)
	readings.HandleFunc("/{id}", r.resources.Readings.GetReading).Methods(http.MethodGet)

	// Plots
	plots := api.PathPrefix("/plots").Subrouter()
	plots.HandleFunc("/{plotId}/readings", r.resources.Plots.ListPlotReadings).Methods(http.MethodGet)
	plots.HandleFunc("/{plotId}/readings/range", r.resources.Plots.ListPlotReadingsRange).Methods(http.MethodGet)
	plots.HandleFunc("/{plotId}/readings/latest", r.resources.Plots.GetLatestPlotReading).Methods(http.MethodGet)
	plots.HandleFunc("/{plotId}/readings/last24h", r.resources.Plots.ListPlotReadingsLast24h).Methods(http.MethodGet)
	plots.HandleFunc("/{plotId}/status", r.resources.Plots.GetPlotStatus).Methods(http.MethodGet)
	plots.HandleFunc("/{plotId}/aggregate", r.resources.Plots.GetPlotAggregate).Methods(http.MethodGet)
	plots.HandleFunc("/{plotId}/sensors", r.resources.Plots.ListPlotSensors).Methods(http.MethodGet)

	// Sensors
	sensors := api.PathPrefix("/sensors").Subrouter()
	sensors.HandleFunc("", r.resources.Sensors.ListSensors).Methods(http.MethodGet)
	sensors.HandleFunc("", r.resources.Sensors.CreateSensor).Methods(http.MethodPost)
	sensors.HandleFunc("/active", r.resources.Sensors.ListActiveSensors).Methods(http.MethodGet)
	sensors.HandleFunc("/code/{code}", r.resources.Sensors.GetSensorByCode).Methods(http.MethodGet)
	sensors.HandleFunc("/{id}", r.resources.Sensors.GetSensor).Methods(http.MethodGet)
	sensors.HandleFunc("/{id}", r.resources.Sensors.UpdateSensor).Methods(http.MethodPut)
	sensors.HandleFunc("/{id}", r.resources.Sensors.DeleteSensor).Methods(http.MethodDelete)
	sensors.HandleFunc("/{id}/active", r.resources.Sensors.SetSensorActive).Methods(http.MethodPatch)
	sensors.HandleFunc("/{id}/readings", r.resources.Sensors.GetSensorReadings).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
