// Package validation checks outgoing requests before they reach the
// network and reports problems as *internal.AppError with per-field
// details, so a rejected request never touches container state.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ashraf950/timesheet-client/internal"
)

const dateLayout = "2006-01-02"

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their wire names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(dateLayout, fl.Field().String())
			return err == nil
		})

		// Decimals are validated through their string form.
		validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
			if d, ok := v.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		_ = validate.RegisterValidation("dpositive", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && d.IsPositive()
		})
	})
	return validate
}

// Struct validates v against its `validate` tags.
func Struct(v any) *internal.AppError {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return internal.NewInternalError("validation could not run", err)
	}

	details := internal.ValidationErrors{Errors: make([]internal.ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		details.Errors = append(details.Errors, internal.ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    string(codeFor(fe)),
		})
	}

	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(details)
}

// DateRange checks that end does not precede start. Both must already be
// valid dates.
func DateRange(startField, start, endField, end string) *internal.AppError {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil
	}
	if e.Before(s) {
		return internal.NewValidationFieldError(endField,
			fmt.Sprintf("%s must not be before %s", endField, startField), internal.ErrCodeInvalidDate)
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "gt", "dpositive":
		return fmt.Sprintf("%s must be greater than 0", fe.Field())
	case "lte":
		return fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), "'", ""))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func codeFor(fe validator.FieldError) internal.ErrorCode {
	switch fe.Tag() {
	case "isodate":
		return internal.ErrCodeInvalidDate
	case "gt", "lte":
		if fe.Field() == "hoursWorked" {
			return internal.ErrCodeInvalidHours
		}
	case "oneof":
		switch fe.Field() {
		case "paymentMethod":
			return internal.ErrCodeInvalidMethod
		case "status":
			return internal.ErrCodeInvalidStatus
		case "format":
			return internal.ErrCodeInvalidFormat
		}
	}
	return internal.ErrCodeValidationFailed
}
