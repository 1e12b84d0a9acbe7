// Package validation implements field-attributed validation errors and
// non-blocking data-integrity warnings.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by errors.Is for every Errors value.
var ErrValidation = errors.New("validation failed")

// FieldError is a validation problem with a single input field.
type FieldError struct {
	Field   string `json:"field" example:"recurrenceInterval"`
	Message string `json:"message" example:"recurrenceInterval must be at least 1"`
}

// Errors is a list of field errors. A non-empty Errors is an error.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, f := range e {
		msgs = append(msgs, f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

// Is reports whether target is ErrValidation.
func (e Errors) Is(target error) bool {
	return target == ErrValidation
}

// Add appends an error for a field.
func (e *Errors) Add(field, format string, args ...any) {
	*e = append(*e, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Merge appends all errors of other.
func (e *Errors) Merge(other Errors) {
	*e = append(*e, other...)
}

// Err returns nil if there are no errors and e otherwise. Always use this
// when returning Errors as an error, a nil Errors in a non-nil error
// interface is not nil.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Warning codes.
const (
	WarningDuplicateDueDate      = "DUPLICATE_DUE_DATE"
	WarningDuplicateChequeNumber = "DUPLICATE_CHEQUE_NUMBER"
	WarningMissingChequeImage    = "MISSING_CHEQUE_IMAGE"
)

// Warning is a non-blocking data-integrity finding. The operation that
// produced it still succeeded.
type Warning struct {
	Code    string `json:"code" example:"DUPLICATE_DUE_DATE"`
	Field   string `json:"field" example:"dueDate"`
	Message string `json:"message" example:"another cheque in this series is due on 2024-03-15"`
}

// Warnings is a list of warnings.
type Warnings []Warning

// Add appends a warning.
func (w *Warnings) Add(code, field, format string, args ...any) {
	*w = append(*w, Warning{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names, they are what API clients send
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("hh_mm", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse("15:04", s)
		return err == nil
	})

	return v
}

// Struct validates the "validate" struct tags of s.
func Struct(s any) Errors {
	var errs Errors

	err := validate.Struct(s)
	if err == nil {
		return errs
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		errs.Add("", "%s", err.Error())
		return errs
	}

	for _, fe := range fieldErrors {
		errs = append(errs, FieldError{Field: fe.Field(), Message: text(fe)})
	}
	return errs
}

// text converts a validator error into a human readable message.
func text(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", e.Field(), e.Param())
	case "iso4217":
		return fmt.Sprintf("%s must be an ISO 4217 currency code", e.Field())
	case "hh_mm":
		return fmt.Sprintf("%s must be a time formatted as HH:MM", e.Field())
	}
	return fmt.Sprintf("%s is not valid", e.Field())
}
