package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/obligo/backend/internal/lifecycle"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/obligations"
	"github.com/obligo/backend/internal/reconcile"
	"github.com/obligo/backend/internal/scheduler"
	"github.com/obligo/backend/internal/validation"
)

// httpError is the response for failed requests.
type httpError struct {
	Data   any                     `json:"data" swaggertype:"object"`
	Error  string                  `json:"error" example:"the specified resource ID is not a valid UUID"`
	Fields []validation.FieldError `json:"fields,omitempty"` // Errors by field if validation failed
}

// status returns the HTTP status for an error.
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, scheduler.ErrUnknownJob) {
		return http.StatusNotFound
	}

	var stateErr *lifecycle.StateError
	if errors.As(err, &stateErr) ||
		errors.Is(err, obligations.ErrConcurrentUpdate) ||
		errors.Is(err, reconcile.ErrStale) ||
		errors.Is(err, models.ErrAccountInUse) ||
		errors.Is(err, models.ErrTransactionMatched) {
		return http.StatusConflict
	}

	return http.StatusBadRequest
}

// fail writes the response for err. Validation errors list their fields.
func fail(c *gin.Context, err error) {
	e := httpError{Error: err.Error()}

	var errs validation.Errors
	if errors.As(err, &errs) {
		e.Fields = errs
	}

	c.JSON(status(err), e)
}

var (
	errHorizonInvalid = errors.New("the horizon query parameter must be a non-negative number of days")
	errCountInvalid   = errors.New("the count query parameter must be between 1 and 520")
)
