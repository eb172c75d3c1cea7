package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/logging"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.InsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail renders err as a JSON error body keyed by its kind. Internal failures
// are logged and their detail hidden unless dev mode is on; stock failures
// carry their structured violation payload.
func fail(c echo.Context, dev bool, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	kind := apperr.KindOf(err)
	body := echo.Map{"kind": kind.String()}

	var se *apperr.StockError
	var ce *apperr.CartStockError
	var ae *apperr.Error
	switch {
	case errors.As(err, &se):
		body["error"] = se.Error()
		body["violations"] = se.Violations
	case errors.As(err, &ce):
		body["error"] = ce.Error()
		body["available"] = ce.Available
		body["already_in_cart"] = ce.InCart
	case errors.As(err, &ae):
		body["error"] = ae.Error()
		if ae.Field != "" {
			body["field"] = ae.Field
		}
	default:
		body["error"] = err.Error()
	}

	if kind == apperr.Internal {
		logging.FromContext(c.Request().Context()).Error("request failed", "error", err)
		if !dev {
			body["error"] = "internal server error"
		}
	}
	return c.JSON(statusFor(kind), body)
}

// wantsJSON reports whether the client asked for JSON rather than a
// browser-style redirect.
func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get("Accept"), "application/json")
}

func paramUint(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, apperr.Newf(apperr.InvalidInput, "invalid %s", name)
	}
	return uint(v), nil
}

func queryInt(c echo.Context, name string, def int) int {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
