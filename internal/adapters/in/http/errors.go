package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps the shared error taxonomy to HTTP status codes.
// Validation failures are the client's fault; lost races and broken
// preconditions are conflicts the client resolves by refreshing its view.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrAlreadyAssigned),
		errors.Is(err, errs.ErrVersionConflict),
		errors.Is(err, errs.ErrPreconditionFailed),
		errors.Is(err, errs.ErrDuplicateEntry),
		errors.Is(err, ports.ErrAgentNotAvailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail renders an error through the response envelope. Internal failures are
// not echoed back to the client.
func fail(ctx echo.Context, err error) error {
	code := statusFor(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal error"
	}
	if errors.Is(err, errs.ErrAlreadyAssigned) {
		message = "order no longer available"
	}

	return ctx.JSON(code, envelope{
		Success: false,
		Error:   &errorBody{Code: code, Message: message},
	})
}

// ok renders a success envelope with the given status and payload.
func ok(ctx echo.Context, code int, data any) error {
	return ctx.JSON(code, envelope{Success: true, Data: data})
}
