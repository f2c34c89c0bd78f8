package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

// Logger writes one access line per request. The status is the one the
// error handler will send when the handler failed before writing.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			res := c.Response()
			status := res.Status
			if err != nil && !res.Committed {
				status = statusOf(err)
			}

			evt := accessEvent(logger, status, err).
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Str("route", c.Path()).
				Int("status", status).
				Int64("bytes_out", res.Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if uid, ok := c.Get("user_id").(int64); ok {
				evt = evt.Int64("user_id", uid)
			}
			evt.Msg("request")

			return err
		}
	}
}

// accessEvent picks the level from the status. Only the public message is
// attached; ErrorHandler logs the cause of server faults.
func accessEvent(logger zerolog.Logger, status int, err error) *zerolog.Event {
	switch {
	case status >= 500:
		evt := logger.Error()
		if err != nil {
			evt = evt.Str("error", apperr.PublicMessage(err))
		}
		return evt
	case err != nil:
		return logger.Warn().Str("error", apperr.PublicMessage(err))
	default:
		return logger.Info()
	}
}
