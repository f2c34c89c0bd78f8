package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler renders errors as {"error": message}. Classified errors use
// their kind's status; echo errors (404 route, 405, 413) keep their own.
// Internal causes are logged and never returned to the client.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := statusOf(err)
		msg := messageOf(err)

		if status >= http.StatusInternalServerError && !isEchoError(err) {
			logger.Error().
				Err(err).
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, ErrorResponse{Error: msg})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Str("request_id", GetRequestID(c)).Msg("write error response")
		}
	}
}

func isEchoError(err error) bool {
	var he *echo.HTTPError
	return errors.As(err, &he) && !errors.As(err, new(*apperr.Error))
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if isEchoError(err) && errors.As(err, &he) {
		return he.Code
	}
	return apperr.KindOf(err).Status()
}

func messageOf(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return apperr.PublicMessage(err)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return m
		}
		return http.StatusText(he.Code)
	}
	return "internal server error"
}
