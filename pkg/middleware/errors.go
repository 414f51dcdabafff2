package middleware

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"fertplan/pkg/apperr"
)

// Status maps an error kind to its HTTP status.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound, apperr.KindFormulaMissing:
		return http.StatusNotFound
	case apperr.KindDuplicateShipmentNumber, apperr.KindInsufficientInventory, apperr.KindIllegalTransition, apperr.KindInUse:
		return http.StatusConflict
	case apperr.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorHandler writes every error as {"error", "kind", ...}. Internal errors
// are logged under a correlation id that is echoed back to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		// routing errors: 404, 405, and body limits
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		writeJSON(c, he.Code, map[string]any{"error": msg, "kind": kindForStatus(he.Code)})
		return
	}

	ae := apperr.As(err)
	body := map[string]any{"error": ae.Message(), "kind": ae.Kind}
	switch ae.Kind {
	case apperr.KindInsufficientInventory:
		body["limiter"] = ae.Limiter
		body["shortfall"] = ae.Shortfall
	case apperr.KindStorageUnavailable:
		body["retryable"] = true
		log.Warnf("[http] %s %s: %v", c.Request().Method, c.Path(), err)
	case apperr.KindInternal:
		ae.CorrelationID = correlationID(c)
		body["error"] = "internal error"
		body["correlation_id"] = ae.CorrelationID
		log.Errorj(log.JSON{
			"correlation_id": ae.CorrelationID,
			"method":         c.Request().Method,
			"path":           c.Path(),
			"op":             ae.Op,
			"error":          err.Error(),
		})
	}
	writeJSON(c, Status(ae.Kind), body)
}

func correlationID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

func kindForStatus(code int) apperr.Kind {
	switch {
	case code == http.StatusNotFound:
		return apperr.KindNotFound
	case code >= 500:
		return apperr.KindInternal
	}
	return apperr.KindValidation
}

func writeJSON(c echo.Context, code int, body map[string]any) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		log.Errorf("[http] write error response: %v", err)
	}
}
