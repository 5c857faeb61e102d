package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
)

// InternalErrorMessage is the only detail a client sees for unexpected failures
const InternalErrorMessage = "Internal server error"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
}

// StatusFor maps a service error kind to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrValidation),
		errors.Is(err, entities.ErrConflict),
		errors.Is(err, entities.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, entities.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// httpError converts a service error into an echo error. Unexpected errors
// keep their detail in Internal so it is logged but never sent.
func httpError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, InternalErrorMessage).SetInternal(err)
	}

	var domainErr *entities.Error
	if errors.As(err, &domainErr) {
		return echo.NewHTTPError(status, domainErr.Message)
	}
	return echo.NewHTTPError(status, err.Error())
}

// errInvalidBody is returned when the request body cannot be decoded
var errInvalidBody = echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")

// invalidBody logs why a request body was rejected and returns errInvalidBody
func invalidBody(c echo.Context, log *logger.Logger, err error) error {
	log.WithError(err).Warnw("Invalid request body",
		"method", c.Request().Method,
		"path", c.Path(),
	)
	return errInvalidBody
}
