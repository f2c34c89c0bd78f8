package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

// BindError classifies an error from echo.Context.Bind. Decode failures
// become validation errors; anything echo raised with another status while
// reading the body (413 from BodyLimit, 408 from a timed out read) is
// returned unchanged.
func BindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code != http.StatusBadRequest {
			return he
		}
		return apperr.Validation("invalid request body: %v", he.Message)
	}
	return apperr.Validation("invalid request body: %v", err)
}
