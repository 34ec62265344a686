// FilePath: internal/validation/validation_test.go
package validation

import (
	"testing"
	"time"

	apierrors "github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/models"
	"github.com/shopspring/decimal"
)

func dec(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func strptr(s string) *string { return &s }

func validDraft() *models.ReadingDraft {
	return &models.ReadingDraft{
		PlotID:       "plot-1",
		SensorCode:   strptr("SM-001"),
		SoilMoisture: dec("42.50"),
	}
}

func TestValidDraftPasses(t *testing.T) {
	v := New()
	if err := v.ValidateReadingDraft(validDraft()); err != nil {
		t.Fatalf("expected valid draft to pass, got %v", err)
	}
}

func TestDraftRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.ReadingDraft)
	}{
		{"missing plot", func(d *models.ReadingDraft) { d.PlotID = "" }},
		{"missing sensor id and code", func(d *models.ReadingDraft) { d.SensorCode = nil }},
		{"empty sensor code counts as missing", func(d *models.ReadingDraft) { d.SensorCode = strptr("") }},
		{"no metrics", func(d *models.ReadingDraft) { d.SoilMoisture = decimal.NullDecimal{} }},
		{"soil moisture above range", func(d *models.ReadingDraft) { d.SoilMoisture = dec("100.01") }},
		{"soil moisture below range", func(d *models.ReadingDraft) { d.SoilMoisture = dec("-0.01") }},
		{"temperature below range", func(d *models.ReadingDraft) { d.Temperature = dec("-50.5") }},
		{"temperature above range", func(d *models.ReadingDraft) { d.Temperature = dec("60.5") }},
		{"negative precipitation", func(d *models.ReadingDraft) { d.Precipitation = dec("-1") }},
		{"wind speed above range", func(d *models.ReadingDraft) { d.WindSpeed = dec("500.1") }},
		{"wind direction too long", func(d *models.ReadingDraft) { d.WindDirection = strptr("north-northwest") }},
		{"negative radiation", func(d *models.ReadingDraft) { d.SolarRadiation = dec("-0.5") }},
		{"pressure below range", func(d *models.ReadingDraft) { d.Pressure = dec("799.99") }},
		{"pressure above range", func(d *models.ReadingDraft) { d.Pressure = dec("1100.01") }},
		{"sensor code too long", func(d *models.ReadingDraft) {
			d.SensorCode = strptr("0123456789012345678901234567890123456789012345678901")
		}},
		{"observed_at too far in the future", func(d *models.ReadingDraft) {
			future := time.Now().Add(10 * time.Minute)
			d.ObservedAt = &future
		}},
	}

	v := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mutate(draft)
			err := v.ValidateReadingDraft(draft)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !apierrors.IsValidation(err) {
				t.Fatalf("expected validation error type, got %v", err)
			}
		})
	}
}

func TestBoundaryValuesPass(t *testing.T) {
	v := New()

	draft := validDraft()
	draft.SoilMoisture = dec("0")
	draft.Temperature = dec("-50")
	draft.Precipitation = dec("0")
	draft.AirHumidity = dec("100")
	draft.WindSpeed = dec("500")
	draft.SolarRadiation = dec("0")
	draft.Pressure = dec("800")

	if err := v.ValidateReadingDraft(draft); err != nil {
		t.Fatalf("boundary values should pass, got %v", err)
	}
}

func TestObservedAtWithinSkewPasses(t *testing.T) {
	v := New()

	draft := validDraft()
	near := time.Now().Add(2 * time.Minute)
	draft.ObservedAt = &near

	if err := v.ValidateReadingDraft(draft); err != nil {
		t.Fatalf("observation within skew should pass, got %v", err)
	}
}

func TestSensorDraftRules(t *testing.T) {
	v := New()

	draft := &models.SensorDraft{
		PlotID: "plot-1",
		Code:   "SM-001",
		Type:   models.Moisture,
	}
	if err := v.ValidateSensorDraft(draft); err != nil {
		t.Fatalf("expected valid sensor draft to pass, got %v", err)
	}

	bad := &models.SensorDraft{
		PlotID: "plot-1",
		Code:   "SM-002",
		Type:   "rain-gauge",
	}
	err := v.ValidateSensorDraft(bad)
	if err == nil {
		t.Fatal("expected validation error for unknown sensor type")
	}
	if !apierrors.IsValidation(err) {
		t.Fatalf("expected validation error type, got %v", err)
	}
}
