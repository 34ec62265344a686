// FilePath: internal/hubservice/hubservice.aggregate.go
package hubservice

import (
	"context"
	"fmt"
	"time"

	"github.com/agrosense/plothub/internal/aggregation"
	"github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/models"
)

// AggregateReadings fetches the plot's readings in [start, end], both ends
// inclusive, and reduces them into hour or day buckets. Argument errors are
// raised before the store is touched.
func (s *HubService) AggregateReadings(ctx context.Context, plotID string, start, end time.Time, granularity string) ([]models.AggregateBucket, error) {
	if start.After(end) {
		return nil, errors.NewInvalidRangeError("start must not be after end")
	}
	g, ok := aggregation.ParseGranularity(granularity)
	if !ok {
		return nil, errors.NewInvalidGranularityError(
			fmt.Sprintf("granularity must be %q or %q", aggregation.Hour, aggregation.Day))
	}

	readings, err := s.Readings.ListByRange(ctx, plotID, start, end)
	if err != nil {
		return nil, err
	}

	return aggregation.Aggregate(plotID, readings, g), nil
}
