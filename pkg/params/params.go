// Package params extracts typed path/query values and request bodies for the
// HTTP controllers. Failures come back as validation errors.
package params

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"fertplan/pkg/apperr"
)

// Uint parses a positive integer path parameter.
func Uint(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Validation("params", "invalid %s %q", name, raw)
	}
	return uint(n), nil
}

// String returns a non-empty path parameter.
func String(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	// names such as "24/410" arrive percent-encoded
	if u, err := url.PathUnescape(v); err == nil {
		v = u
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", apperr.Validation("params", "%s is required", name)
	}
	return v, nil
}

// Bool reads a query flag such as ?strict=1.
func Bool(c echo.Context, name string, def bool) bool {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Bind decodes the JSON body into v.
func Bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apperr.Validation("params", "invalid json: %v", bodyErr(err))
	}
	return nil
}

func bodyErr(err error) string {
	if he, ok := err.(*echo.HTTPError); ok {
		if he.Internal != nil {
			return he.Internal.Error()
		}
		if s, ok := he.Message.(string); ok {
			return s
		}
	}
	return err.Error()
}
