// FilePath: internal/hubservice/hubservice_test.go
package hubservice

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/agrosense/plothub/internal/cache"
	apierrors "github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/models"
	"github.com/agrosense/plothub/internal/repository"
	"github.com/shopspring/decimal"
)

// fakeSensorRepo is an in-memory SensorRepository. The err fields inject
// store failures into the matching methods.
type fakeSensorRepo struct {
	sensors       map[string]*models.Sensor
	lastUpdates   map[string]time.Time
	listByPlotErr error
	lastListLimit int
}

func newFakeSensorRepo() *fakeSensorRepo {
	return &fakeSensorRepo{
		sensors:     make(map[string]*models.Sensor),
		lastUpdates: make(map[string]time.Time),
	}
}

func (f *fakeSensorRepo) Create(ctx context.Context, sensor *models.Sensor) error {
	f.sensors[sensor.ID] = sensor
	return nil
}

func (f *fakeSensorRepo) Get(ctx context.Context, id string) (*models.Sensor, error) {
	sensor, ok := f.sensors[id]
	if !ok {
		return nil, apierrors.NewNotFoundError("sensor not found", nil)
	}
	return sensor, nil
}

func (f *fakeSensorRepo) GetByCode(ctx context.Context, code string) (*models.Sensor, error) {
	for _, sensor := range f.sensors {
		if sensor.Code == code {
			return sensor, nil
		}
	}
	return nil, apierrors.NewNotFoundError("sensor not found", nil)
}

func (f *fakeSensorRepo) List(ctx context.Context, offset, limit int) ([]*models.Sensor, error) {
	f.lastListLimit = limit
	all := make([]*models.Sensor, 0, len(f.sensors))
	for _, sensor := range f.sensors {
		all = append(all, sensor)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []*models.Sensor{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeSensorRepo) ListByPlot(ctx context.Context, plotID string) ([]*models.Sensor, error) {
	if f.listByPlotErr != nil {
		return nil, f.listByPlotErr
	}
	matched := []*models.Sensor{}
	for _, sensor := range f.sensors {
		if sensor.PlotID == plotID {
			matched = append(matched, sensor)
		}
	}
	return matched, nil
}

func (f *fakeSensorRepo) ListActive(ctx context.Context) ([]*models.Sensor, error) {
	matched := []*models.Sensor{}
	for _, sensor := range f.sensors {
		if sensor.Active {
			matched = append(matched, sensor)
		}
	}
	return matched, nil
}

func (f *fakeSensorRepo) Update(ctx context.Context, sensor *models.Sensor) error {
	if _, ok := f.sensors[sensor.ID]; !ok {
		return apierrors.NewNotFoundError("sensor not found", nil)
	}
	f.sensors[sensor.ID] = sensor
	return nil
}

func (f *fakeSensorRepo) UpdateLastReading(ctx context.Context, id string, at time.Time) error {
	sensor, ok := f.sensors[id]
	if !ok {
		return apierrors.NewNotFoundError("sensor not found", nil)
	}
	sensor.LastReadingAt = &at
	f.lastUpdates[id] = at
	return nil
}

func (f *fakeSensorRepo) SetActive(ctx context.Context, id string, active bool) error {
	sensor, ok := f.sensors[id]
	if !ok {
		return apierrors.NewNotFoundError("sensor not found", nil)
	}
	sensor.Active = active
	return nil
}

func (f *fakeSensorRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.sensors[id]; !ok {
		return apierrors.NewNotFoundError("sensor not found", nil)
	}
	delete(f.sensors, id)
	return nil
}

// fakeReadingRepo is an in-memory ReadingRepository. The err fields inject
// store failures into the matching methods.
type fakeReadingRepo struct {
	readings  []*models.Reading
	listCalls int
	lastLimit int
	rangeErr  error
	sinceErr  error
	meanErr   error
	latestErr error
}

func (f *fakeReadingRepo) Insert(ctx context.Context, reading *models.Reading) error {
	f.readings = append(f.readings, reading)
	return nil
}

func (f *fakeReadingRepo) InsertMany(ctx context.Context, readings []*models.Reading) error {
	for _, reading := range readings {
		if err := f.Insert(ctx, reading); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeReadingRepo) Get(ctx context.Context, id string) (*models.Reading, error) {
	for _, reading := range f.readings {
		if reading.ID == id {
			return reading, nil
		}
	}
	return nil, apierrors.NewNotFoundError("reading not found", nil)
}

func (f *fakeReadingRepo) ListByPlot(ctx context.Context, plotID string, limit int) ([]*models.Reading, error) {
	f.lastLimit = limit
	matched := []*models.Reading{}
	for _, reading := range f.readings {
		if reading.PlotID == plotID {
			matched = append(matched, reading)
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeReadingRepo) ListBySensor(ctx context.Context, sensorID string, limit int) ([]*models.Reading, error) {
	f.lastLimit = limit
	matched := []*models.Reading{}
	for _, reading := range f.readings {
		if reading.SensorID != nil && *reading.SensorID == sensorID {
			matched = append(matched, reading)
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeReadingRepo) ListByRange(ctx context.Context, plotID string, start, end time.Time) ([]*models.Reading, error) {
	f.listCalls++
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}
	matched := []*models.Reading{}
	for _, reading := range f.readings {
		if reading.PlotID != plotID {
			continue
		}
		if reading.ObservedAt.Before(start) || reading.ObservedAt.After(end) {
			continue
		}
		matched = append(matched, reading)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ObservedAt.Before(matched[j].ObservedAt) })
	return matched, nil
}

func (f *fakeReadingRepo) Latest(ctx context.Context, plotID string) (*models.Reading, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	var latest *models.Reading
	for _, reading := range f.readings {
		if reading.PlotID != plotID {
			continue
		}
		if latest == nil || reading.ObservedAt.After(latest.ObservedAt) {
			latest = reading
		}
	}
	if latest == nil {
		return nil, apierrors.NewNotFoundError("no readings for plot", nil)
	}
	return latest, nil
}

func (f *fakeReadingRepo) ListSince(ctx context.Context, plotID string, since time.Time) ([]*models.Reading, error) {
	if f.sinceErr != nil {
		return nil, f.sinceErr
	}
	matched := []*models.Reading{}
	for _, reading := range f.readings {
		if reading.PlotID == plotID && !reading.ObservedAt.Before(since) {
			matched = append(matched, reading)
		}
	}
	return matched, nil
}

func (f *fakeReadingRepo) MeanSince(ctx context.Context, plotID string, metric repository.MetricColumn, since time.Time) (decimal.NullDecimal, error) {
	if f.meanErr != nil {
		return decimal.NullDecimal{}, f.meanErr
	}
	values := []decimal.Decimal{}
	for _, reading := range f.readings {
		if reading.PlotID != plotID || reading.ObservedAt.Before(since) {
			continue
		}
		var nd decimal.NullDecimal
		switch metric {
		case repository.MetricSoilMoisture:
			nd = reading.SoilMoisture
		case repository.MetricTemperature:
			nd = reading.Temperature
		}
		if nd.Valid {
			values = append(values, nd.Decimal)
		}
	}
	if len(values) == 0 {
		return decimal.NullDecimal{}, nil
	}
	total := decimal.Sum(values[0], values[1:]...)
	mean := total.DivRound(decimal.NewFromInt(int64(len(values))), 6)
	return decimal.NullDecimal{Decimal: mean, Valid: true}, nil
}

// fakePublisher records published events and can be told to fail.
type fakePublisher struct {
	events []*models.ReadingEvent
	err    error
}

func (f *fakePublisher) PublishReadingEvent(event *models.ReadingEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Close() {}

func newTestService() (*HubService, *fakeSensorRepo, *fakeReadingRepo, *fakePublisher) {
	sensors := newFakeSensorRepo()
	readings := &fakeReadingRepo{}
	publisher := &fakePublisher{}
	svc := New(sensors, readings, cache.NewNoopSensors(), publisher)
	return svc, sensors, readings, publisher
}

func dec(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func strptr(s string) *string { return &s }

func errorType(t *testing.T, err error) apierrors.ErrorType {
	t.Helper()
	apiErr, ok := err.(*apierrors.APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	return apiErr.Type
}

func TestAggregateReadingsInvalidRange(t *testing.T) {
	svc, _, readings, _ := newTestService()

	end := time.Now().UTC()
	start := end.Add(time.Hour)

	_, err := svc.AggregateReadings(context.Background(), "plot-1", start, end, "hour")
	if err == nil {
		t.Fatal("expected invalid range error")
	}
	if got := errorType(t, err); got != apierrors.ErrorTypeInvalidRange {
		t.Errorf("error type = %s, want %s", got, apierrors.ErrorTypeInvalidRange)
	}
	if readings.listCalls != 0 {
		t.Errorf("store was read %d times before argument validation", readings.listCalls)
	}
}

func TestAggregateReadingsInvalidGranularity(t *testing.T) {
	svc, _, readings, _ := newTestService()

	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC()

	_, err := svc.AggregateReadings(context.Background(), "plot-1", start, end, "week")
	if err == nil {
		t.Fatal("expected invalid granularity error")
	}
	if got := errorType(t, err); got != apierrors.ErrorTypeInvalidGranularity {
		t.Errorf("error type = %s, want %s", got, apierrors.ErrorTypeInvalidGranularity)
	}
	if readings.listCalls != 0 {
		t.Errorf("store was read %d times before argument validation", readings.listCalls)
	}
}

func TestAggregateReadingsEmptyRange(t *testing.T) {
	svc, _, _, _ := newTestService()

	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC()

	buckets, err := svc.AggregateReadings(context.Background(), "plot-1", start, end, "hour")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buckets == nil || len(buckets) != 0 {
		t.Fatalf("expected empty bucket slice, got %v", buckets)
	}
}

func TestAggregateReadingsEndToEnd(t *testing.T) {
	svc, _, readings, _ := newTestService()

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	readings.readings = []*models.Reading{
		{ID: "rd1", PlotID: "plot-p", Temperature: dec("20"), AirHumidity: dec("50"), ObservedAt: day.Add(10*time.Hour + 5*time.Minute)},
		{ID: "rd2", PlotID: "plot-p", Temperature: dec("22"), ObservedAt: day.Add(10*time.Hour + 40*time.Minute)},
		{ID: "rd3", PlotID: "plot-p", Temperature: dec("24"), ObservedAt: day.Add(11*time.Hour + 10*time.Minute)},
	}

	buckets, err := svc.AggregateReadings(context.Background(), "plot-p",
		day.Add(10*time.Hour), day.Add(11*time.Hour+59*time.Minute), "hour")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}

	first, second := buckets[0], buckets[1]
	if first.Count != 2 || second.Count != 1 {
		t.Errorf("counts = %d, %d, want 2, 1", first.Count, second.Count)
	}
	if !first.TemperatureMean.Decimal.Equal(decimal.RequireFromString("21")) {
		t.Errorf("first temp mean = %v, want 21", first.TemperatureMean)
	}
	if !first.AirHumidityMean.Valid || !first.AirHumidityMean.Decimal.Equal(decimal.RequireFromString("50")) {
		t.Errorf("first humidity mean = %v, want 50", first.AirHumidityMean)
	}
	if !second.TemperatureMean.Decimal.Equal(decimal.RequireFromString("24")) {
		t.Errorf("second temp mean = %v, want 24", second.TemperatureMean)
	}
	if second.AirHumidityMean.Valid {
		t.Errorf("second humidity mean should be absent, got %v", second.AirHumidityMean)
	}
}

func TestGetPlotStatusEmptyWindow(t *testing.T) {
	svc, sensors, _, _ := newTestService()

	sensors.sensors["sn1"] = &models.Sensor{ID: "sn1", PlotID: "plot-1", Code: "SM-001", Active: true}
	sensors.sensors["sn2"] = &models.Sensor{ID: "sn2", PlotID: "plot-1", Code: "SM-002", Active: false}

	status, err := svc.GetPlotStatus(context.Background(), "plot-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if status.LastReadingAt != nil {
		t.Errorf("last reading time should be absent, got %v", status.LastReadingAt)
	}
	if status.SoilMoisture24hMean.Valid {
		t.Errorf("soil moisture mean should be absent over an empty window, got %v", status.SoilMoisture24hMean)
	}
	if status.Temperature24hMean.Valid {
		t.Errorf("temperature mean should be absent over an empty window, got %v", status.Temperature24hMean)
	}
	if !status.Precipitation24hSum.Equal(decimal.Zero) {
		t.Errorf("precipitation sum should be zero over an empty window, got %v", status.Precipitation24hSum)
	}
	if status.TotalSensors != 2 || status.ActiveSensors != 1 {
		t.Errorf("sensor counts = %d/%d, want 2/1", status.ActiveSensors, status.TotalSensors)
	}
}

func TestGetPlotStatusWithReadings(t *testing.T) {
	svc, _, readings, _ := newTestService()

	now := time.Now().UTC()
	readings.readings = []*models.Reading{
		{ID: "rd1", PlotID: "plot-1", SoilMoisture: dec("40"), Precipitation: dec("1.50"), ObservedAt: now.Add(-3 * time.Hour)},
		{ID: "rd2", PlotID: "plot-1", SoilMoisture: dec("44"), Temperature: dec("22"), Precipitation: dec("0.50"), ObservedAt: now.Add(-1 * time.Hour)},
		{ID: "rd3", PlotID: "plot-1", SoilMoisture: dec("90"), ObservedAt: now.Add(-30 * time.Hour)},
	}

	status, err := svc.GetPlotStatus(context.Background(), "plot-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if status.LastReadingAt == nil || !status.LastReadingAt.Equal(now.Add(-1*time.Hour)) {
		t.Errorf("last reading time = %v", status.LastReadingAt)
	}
	if !status.LastSoilMoisture.Decimal.Equal(decimal.RequireFromString("44")) {
		t.Errorf("last soil moisture = %v, want 44", status.LastSoilMoisture)
	}
	// The reading outside the window contributes to nothing.
	if !status.SoilMoisture24hMean.Decimal.Equal(decimal.RequireFromString("42")) {
		t.Errorf("soil moisture mean = %v, want 42", status.SoilMoisture24hMean)
	}
	if !status.Precipitation24hSum.Equal(decimal.RequireFromString("2.00")) {
		t.Errorf("precipitation sum = %v, want 2.00", status.Precipitation24hSum)
	}
}

func TestGetPlotStatusStoreFailureAbortsSnapshot(t *testing.T) {
	boom := apierrors.NewDatabaseError("reading store unavailable", nil)

	cases := []struct {
		name string
		wire func(sensors *fakeSensorRepo, readings *fakeReadingRepo)
	}{
		{"latest read fails", func(sensors *fakeSensorRepo, readings *fakeReadingRepo) { readings.latestErr = boom }},
		{"window mean fails", func(sensors *fakeSensorRepo, readings *fakeReadingRepo) { readings.meanErr = boom }},
		{"sensor listing fails", func(sensors *fakeSensorRepo, readings *fakeReadingRepo) { sensors.listByPlotErr = boom }},
		{"window listing fails", func(sensors *fakeSensorRepo, readings *fakeReadingRepo) { readings.sinceErr = boom }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, sensors, readings, _ := newTestService()
			readings.readings = []*models.Reading{
				{ID: "rd1", PlotID: "plot-1", SoilMoisture: dec("40"), ObservedAt: time.Now().UTC().Add(-time.Hour)},
			}
			tc.wire(sensors, readings)

			status, err := svc.GetPlotStatus(context.Background(), "plot-1")
			if err == nil {
				t.Fatal("expected the snapshot to fail")
			}
			if got := errorType(t, err); got != apierrors.ErrorTypeDatabase {
				t.Errorf("error type = %s, want %s", got, apierrors.ErrorTypeDatabase)
			}
			if status != nil {
				t.Errorf("expected no partial snapshot, got %+v", status)
			}
		})
	}
}

func TestAggregateReadingsStoreFailurePropagates(t *testing.T) {
	svc, _, readings, _ := newTestService()
	readings.rangeErr = apierrors.NewDatabaseError("reading store unavailable", nil)

	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC()

	buckets, err := svc.AggregateReadings(context.Background(), "plot-1", start, end, "hour")
	if err == nil {
		t.Fatal("expected the store failure to propagate")
	}
	if got := errorType(t, err); got != apierrors.ErrorTypeDatabase {
		t.Errorf("error type = %s, want %s", got, apierrors.ErrorTypeDatabase)
	}
	if buckets != nil {
		t.Errorf("expected no buckets on failure, got %v", buckets)
	}
}

func TestListLimitClamping(t *testing.T) {
	svc, sensors, readings, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.ListReadingsByPlot(ctx, "plot-1", 999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if readings.lastLimit != 999 {
		t.Errorf("limit within the ceiling = %d, want 999", readings.lastLimit)
	}

	if _, err := svc.ListReadingsByPlot(ctx, "plot-1", maxListLimit+1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if readings.lastLimit != defaultListLimit {
		t.Errorf("limit above the ceiling = %d, want default %d", readings.lastLimit, defaultListLimit)
	}

	if _, err := svc.ListReadingsByPlot(ctx, "plot-1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if readings.lastLimit != defaultListLimit {
		t.Errorf("zero limit = %d, want default %d", readings.lastLimit, defaultListLimit)
	}

	if _, err := svc.ListSensors(ctx, 0, 999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sensors.lastListLimit != 999 {
		t.Errorf("sensor limit within the ceiling = %d, want 999", sensors.lastListLimit)
	}

	if _, err := svc.ListSensors(ctx, 0, maxListLimit+1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sensors.lastListLimit != defaultSensorPage {
		t.Errorf("sensor limit above the ceiling = %d, want default %d", sensors.lastListLimit, defaultSensorPage)
	}
}

func TestIngestReadingResolvesSensorByCode(t *testing.T) {
	svc, sensors, readings, publisher := newTestService()

	sensors.sensors["sn1"] = &models.Sensor{ID: "sn1", PlotID: "plot-1", Code: "SM-001", Active: true}

	observed := time.Now().UTC().Add(-10 * time.Minute)
	draft := &models.ReadingDraft{
		PlotID:       "plot-1",
		SensorCode:   strptr("SM-001"),
		SoilMoisture: dec("42.50"),
		ObservedAt:   &observed,
	}

	reading, err := svc.IngestReading(context.Background(), draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reading.SensorID == nil || *reading.SensorID != "sn1" {
		t.Errorf("sensor id = %v, want sn1", reading.SensorID)
	}
	if reading.SensorCode == nil || *reading.SensorCode != "SM-001" {
		t.Errorf("sensor code = %v, want SM-001", reading.SensorCode)
	}
	if len(readings.readings) != 1 {
		t.Fatalf("expected 1 persisted reading, got %d", len(readings.readings))
	}
	if got, ok := sensors.lastUpdates["sn1"]; !ok || !got.Equal(observed) {
		t.Errorf("sensor last reading update = %v, want %v", got, observed)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.events))
	}
	if publisher.events[0].ReadingID != reading.ID || publisher.events[0].PlotID != "plot-1" {
		t.Errorf("published event does not match reading: %+v", publisher.events[0])
	}
}

func TestIngestReadingUnresolvableCode(t *testing.T) {
	svc, sensors, readings, _ := newTestService()

	draft := &models.ReadingDraft{
		PlotID:       "plot-1",
		SensorCode:   strptr("UNKNOWN"),
		SoilMoisture: dec("42.50"),
	}

	reading, err := svc.IngestReading(context.Background(), draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reading.SensorID != nil || reading.SensorCode != nil {
		t.Errorf("reading should be unattributed, got id=%v code=%v", reading.SensorID, reading.SensorCode)
	}
	if len(readings.readings) != 1 {
		t.Fatalf("expected 1 persisted reading, got %d", len(readings.readings))
	}
	if len(sensors.lastUpdates) != 0 {
		t.Errorf("no sensor should have been touched, got %v", sensors.lastUpdates)
	}
}

func TestIngestReadingPublishFailureIsSwallowed(t *testing.T) {
	svc, _, readings, publisher := newTestService()
	publisher.err = context.DeadlineExceeded

	draft := &models.ReadingDraft{
		PlotID:       "plot-1",
		SensorCode:   strptr("SM-001"),
		SoilMoisture: dec("42.50"),
	}

	if _, err := svc.IngestReading(context.Background(), draft); err != nil {
		t.Fatalf("publish failure must not fail ingestion, got %v", err)
	}
	if len(readings.readings) != 1 {
		t.Fatalf("expected 1 persisted reading, got %d", len(readings.readings))
	}
}

func TestIngestReadingDefaultsObservedAt(t *testing.T) {
	svc, _, readings, _ := newTestService()

	before := time.Now().UTC()
	draft := &models.ReadingDraft{
		PlotID:       "plot-1",
		SensorCode:   strptr("SM-001"),
		SoilMoisture: dec("42.50"),
	}
	reading, err := svc.IngestReading(context.Background(), draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().UTC()

	if reading.ObservedAt.Before(before) || reading.ObservedAt.After(after) {
		t.Errorf("observed_at not defaulted to ingestion time: %v", reading.ObservedAt)
	}
	if len(readings.readings) != 1 {
		t.Fatalf("expected 1 persisted reading, got %d", len(readings.readings))
	}
}

func TestIngestBatchFailFast(t *testing.T) {
	svc, _, readings, _ := newTestService()

	drafts := []*models.ReadingDraft{
		{PlotID: "plot-1", SensorCode: strptr("SM-001"), SoilMoisture: dec("40")},
		{PlotID: "plot-1", SensorCode: strptr("SM-001")}, // no metric
		{PlotID: "plot-1", SensorCode: strptr("SM-001"), SoilMoisture: dec("44")},
	}

	ingested, err := svc.IngestBatch(context.Background(), drafts)
	if err == nil {
		t.Fatal("expected batch to fail on the invalid draft")
	}
	if got := errorType(t, err); got != apierrors.ErrorTypeValidation {
		t.Errorf("error type = %s, want %s", got, apierrors.ErrorTypeValidation)
	}
	if len(ingested) != 1 {
		t.Errorf("expected 1 ingested reading before the failure, got %d", len(ingested))
	}
	if len(readings.readings) != 1 {
		t.Errorf("expected exactly the first reading persisted, got %d", len(readings.readings))
	}
}

func TestIngestBatchSizeLimit(t *testing.T) {
	svc, _, _, _ := newTestService()

	drafts := make([]*models.ReadingDraft, maxBatchSize+1)
	for i := range drafts {
		drafts[i] = &models.ReadingDraft{PlotID: "plot-1", SensorCode: strptr("SM-001"), SoilMoisture: dec("40")}
	}

	_, err := svc.IngestBatch(context.Background(), drafts)
	if err == nil {
		t.Fatal("expected oversized batch to be rejected")
	}
	if got := errorType(t, err); got != apierrors.ErrorTypeValidation {
		t.Errorf("error type = %s, want %s", got, apierrors.ErrorTypeValidation)
	}
}

func TestListReadingsWithFiltersPrecedence(t *testing.T) {
	svc, _, readings, _ := newTestService()

	now := time.Now().UTC()
	sensorID := "sn1"
	readings.readings = []*models.Reading{
		{ID: "rd1", PlotID: "plot-1", SensorID: &sensorID, SoilMoisture: dec("40"), ObservedAt: now.Add(-2 * time.Hour)},
		{ID: "rd2", PlotID: "plot-1", SoilMoisture: dec("42"), ObservedAt: now.Add(-1 * time.Hour)},
		{ID: "rd3", PlotID: "plot-2", SoilMoisture: dec("44"), ObservedAt: now},
	}

	start := now.Add(-90 * time.Minute)
	result, err := svc.ListReadingsWithFilters(context.Background(), models.ReadingFilters{
		PlotID: "plot-1", SensorID: sensorID, Start: &start, End: &now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].ID != "rd2" {
		t.Errorf("plot+range should win over sensor filter, got %v", result)
	}

	result, err = svc.ListReadingsWithFilters(context.Background(), models.ReadingFilters{SensorID: sensorID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].ID != "rd1" {
		t.Errorf("sensor filter result = %v", result)
	}

	result, err = svc.ListReadingsWithFilters(context.Background(), models.ReadingFilters{PlotID: "plot-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].ID != "rd3" {
		t.Errorf("plot filter result = %v", result)
	}

	result, err = svc.ListReadingsWithFilters(context.Background(), models.ReadingFilters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("no filters should yield an empty list, got %v", result)
	}
}

func TestSensorLifecycle(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateSensor(ctx, &models.SensorDraft{
		PlotID: "plot-1",
		Code:   "SM-001",
		Type:   models.Moisture,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.Active {
		t.Error("new sensors must start active")
	}

	deactivated, err := svc.SetSensorActive(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deactivated.Active {
		t.Error("sensor should be inactive after deactivation")
	}

	fetched, err := svc.GetSensorByCode(ctx, "SM-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched.ID != created.ID {
		t.Errorf("lookup by code returned %s, want %s", fetched.ID, created.ID)
	}

	if err := svc.DeleteSensor(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetSensor(ctx, created.ID); !apierrors.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestGetSensorWithReadings(t *testing.T) {
	svc, sensors, readings, _ := newTestService()

	sensors.sensors["sn1"] = &models.Sensor{ID: "sn1", PlotID: "plot-1", Code: "SM-001", Active: true}
	sensorID := "sn1"
	for i := 0; i < 3; i++ {
		readings.readings = append(readings.readings, &models.Reading{
			ID:         string(rune('a' + i)),
			PlotID:     "plot-1",
			SensorID:   &sensorID,
			ObservedAt: time.Now().UTC().Add(time.Duration(-i) * time.Hour),
		})
	}

	composed, err := svc.GetSensorWithReadings(context.Background(), "sn1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if composed.Sensor.ID != "sn1" {
		t.Errorf("sensor id = %s, want sn1", composed.Sensor.ID)
	}
	if len(composed.Readings) != 3 {
		t.Errorf("expected 3 readings, got %d", len(composed.Readings))
	}
}
