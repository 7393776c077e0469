package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/marcenapp/internal/engine"
	"github.com/piwi3910/marcenapp/internal/export"
	"github.com/piwi3910/marcenapp/internal/schemas"
	"github.com/piwi3910/marcenapp/internal/session"
)

var (
	errSessionNotFound = errors.New("session not found")
	errUnknownFormat   = errors.New("unknown export format")
)

// HTTPStatus maps a domain error to its response status.
func HTTPStatus(err error) int {
	var (
		verr    *engine.ValidationError
		tooBig  *engine.PartTooLargeError
		schErr  *schemas.SchemaValidationError
		loadErr *schemas.SchemaLoadError
		bodyErr *http.MaxBytesError
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &bodyErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &verr), errors.As(err, &schErr), errors.As(err, &loadErr), errors.As(err, &typeErr):
		return http.StatusBadRequest
	case errors.As(err, &tooBig):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errSessionNotFound), errors.Is(err, session.ErrPartNotFound), errors.Is(err, errUnknownFormat):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNothingToUndo), errors.Is(err, session.ErrNothingToRedo), errors.Is(err, export.ErrNoSheets):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends the status from HTTPStatus with a body that carries the
// typed error's details where there are any.
func writeError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	body := gin.H{"error": err.Error()}

	var (
		verr   *engine.ValidationError
		tooBig *engine.PartTooLargeError
		schErr *schemas.SchemaValidationError
	)
	switch {
	case errors.As(err, &verr):
		body["error"] = "validation failed"
		body["fields"] = verr.Errors
	case errors.As(err, &schErr):
		body["error"] = "part list failed schema validation"
		body["fields"] = schErr.Errors
	case errors.As(err, &tooBig):
		body["parts"] = tooBig.Parts
		body["usable_width"] = tooBig.UsableWidth
		body["usable_height"] = tooBig.UsableHeight
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}
