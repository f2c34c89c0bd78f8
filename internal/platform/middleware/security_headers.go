package middleware

import (
	"github.com/labstack/echo/v4"
)

// responseHeaders go on every response, errors included. Bodies carry
// patient data: nothing may be cached, framed or sniffed.
var responseHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"X-XSS-Protection", "0"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Referrer-Policy", "no-referrer"},
	{"Cache-Control", "no-store"},
	{"Pragma", "no-cache"},
}

func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range responseHeaders {
				h.Set(kv[0], kv[1])
			}
			return next(c)
		}
	}
}
