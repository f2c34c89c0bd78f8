package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

// Recovery converts a handler panic into an internal error so the central
// error handler answers 500. http.ErrAbortHandler is re-raised for net/http.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if e, ok := r.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(r)
				}

				// ErrorHandler logs the cause; the stack is only available here.
				err = panicError(r)
				logger.Error().
					Str("request_id", GetRequestID(c)).
					Str("method", c.Request().Method).
					Str("route", c.Path()).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")
			}()
			return next(c)
		}
	}
}

func panicError(r interface{}) error {
	if e, ok := r.(error); ok {
		return apperr.Internal(fmt.Errorf("panic: %w", e))
	}
	return apperr.Internal(fmt.Errorf("panic: %v", r))
}
