package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"docnorm/pkg/failure"
)

// ErrorBody is the JSON error shape of every endpoint.
type ErrorBody struct {
	Error   string       `json:"error"`
	Kind    failure.Kind `json:"kind,omitempty"`
	Details string       `json:"details,omitempty"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind failure.Kind) int {
	switch kind {
	case failure.KindRequest:
		return http.StatusBadRequest
	case failure.KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func respondEnvelope(c echo.Context, env *failure.Envelope) error {
	return c.JSON(statusFor(env.Kind), ErrorBody{
		Error:   env.Message,
		Kind:    env.Kind,
		Details: env.Details,
	})
}

// ErrorHandler renders errors that escape handlers (routing, body limits,
// binding) in the same shape as extraction failures.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	body := ErrorBody{Error: "An unexpected error occurred", Details: err.Error()}
	status := http.StatusInternalServerError

	switch e := err.(type) {
	case *failure.Error:
		status = statusFor(e.Kind)
		body = ErrorBody{Error: e.Message, Kind: e.Kind}
		if e.Err != nil {
			body.Details = e.Err.Error()
		}
	case *echo.HTTPError:
		status = e.Code
		body = ErrorBody{Error: fmt.Sprintf("%v", e.Message)}
		if e.Code < http.StatusInternalServerError {
			body.Kind = failure.KindRequest
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}
