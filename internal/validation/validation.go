// FilePath: internal/validation/validation.go
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	apierrors "github.com/agrosense/plothub/internal/errors"
	"github.com/agrosense/plothub/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxClockSkew is how far into the future an observation timestamp may lie.
const maxClockSkew = 5 * time.Minute

// Validator wraps a configured validator instance for inbound payloads.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the reading and sensor rule sets registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(nullDecimalValuer, decimal.NullDecimal{})
	v.RegisterStructValidation(readingDraftRules, models.ReadingDraft{})
	return &Validator{validate: v}
}

// nullDecimalValuer lets tag rules see a NullDecimal as a plain float64,
// or as absent when the value is null.
func nullDecimalValuer(field reflect.Value) interface{} {
	if nd, ok := field.Interface().(decimal.NullDecimal); ok {
		if !nd.Valid {
			return nil
		}
		f, _ := nd.Decimal.Float64()
		return f
	}
	return nil
}

// readingDraftRules holds the cross-field rules and the metric range rules.
// Ranges are checked here on the decimal values so that a present zero is
// still validated.
func readingDraftRules(sl validator.StructLevel) {
	draft := sl.Current().Interface().(models.ReadingDraft)

	if (draft.SensorID == nil || *draft.SensorID == "") &&
		(draft.SensorCode == nil || *draft.SensorCode == "") {
		sl.ReportError(draft.SensorID, "sensor_id", "SensorID", "sensor_id_or_code", "")
	}

	if !draft.SoilMoisture.Valid && !draft.Temperature.Valid && !draft.Precipitation.Valid &&
		!draft.AirHumidity.Valid && !draft.WindSpeed.Valid && !draft.SolarRadiation.Valid &&
		!draft.Pressure.Valid {
		sl.ReportError(draft.SoilMoisture, "soil_moisture", "SoilMoisture", "at_least_one_metric", "")
	}

	if draft.ObservedAt != nil && draft.ObservedAt.After(time.Now().Add(maxClockSkew)) {
		sl.ReportError(draft.ObservedAt, "observed_at", "ObservedAt", "max_clock_skew", "")
	}

	checkRange(sl, draft.SoilMoisture, "soil_moisture", "SoilMoisture", "0", "100")
	checkRange(sl, draft.Temperature, "temperature", "Temperature", "-50", "60")
	checkRange(sl, draft.Precipitation, "precipitation", "Precipitation", "0", "")
	checkRange(sl, draft.AirHumidity, "air_humidity", "AirHumidity", "0", "100")
	checkRange(sl, draft.WindSpeed, "wind_speed", "WindSpeed", "0", "500")
	checkRange(sl, draft.SolarRadiation, "solar_radiation", "SolarRadiation", "0", "")
	checkRange(sl, draft.Pressure, "pressure", "Pressure", "800", "1100")
}

func checkRange(sl validator.StructLevel, nd decimal.NullDecimal, name, structName, min, max string) {
	if !nd.Valid {
		return
	}
	if min != "" && nd.Decimal.LessThan(decimal.RequireFromString(min)) {
		sl.ReportError(nd, name, structName, "metric_range", min+".."+max)
		return
	}
	if max != "" && nd.Decimal.GreaterThan(decimal.RequireFromString(max)) {
		sl.ReportError(nd, name, structName, "metric_range", min+".."+max)
	}
}

// ValidateReadingDraft checks an inbound reading payload.
func (v *Validator) ValidateReadingDraft(draft *models.ReadingDraft) error {
	if err := v.validate.Struct(draft); err != nil {
		return asValidationError("reading validation failed", err)
	}
	return nil
}

// ValidateSensorDraft checks an inbound sensor payload.
func (v *Validator) ValidateSensorDraft(draft *models.SensorDraft) error {
	if err := v.validate.Struct(draft); err != nil {
		return asValidationError("sensor validation failed", err)
	}
	return nil
}

func asValidationError(msg string, err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.NewValidationError(msg, err)
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, messageFor(fe))
	}
	return apierrors.NewValidationError(msg, err).WithDetails(details)
}

func messageFor(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s exceeds the maximum length of %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "sensor_id_or_code":
		return "either sensor_id or sensor_code must be provided"
	case "at_least_one_metric":
		return "at least one metric value must be provided"
	case "max_clock_skew":
		return fmt.Sprintf("observed_at may not lie more than %s in the future", maxClockSkew)
	case "metric_range":
		return fmt.Sprintf("%s is outside the allowed range %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
