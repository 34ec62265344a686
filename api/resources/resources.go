// FilePath: api/resources/resources.go
package resources

import (
	"net/http"

	"github.com/agrosense/plothub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Readings *ReadingHandlers
	Plots    *PlotHandlers
	Sensors  *SensorHandlers
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService) *Resources {
	return &Resources{
		Readings: &ReadingHandlers{hubservice: svc},
		Plots:    &PlotHandlers{hubservice: svc},
		Sensors:  &SensorHandlers{hubservice: svc},
	}
}

// HealthCheck reports liveness and the running version.
func (res *Resources) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
}
