package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (t *TokenService) refreshCookies(c echo.Context, newAccess, newRefresh string) {
	if newRefresh == "" {
		return
	}
	c.SetCookie(NewCookie("accessToken", newAccess, "/", time.Now().Add(AccessTokenTTL)))
	c.SetCookie(NewCookie("refreshToken", newRefresh, "/", time.Now().Add(RefreshTokenTTL)))
}

// RequireLogin rejects anonymous requests, refreshing cookies when the
// access token was rotated.
func (t *TokenService) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		newAccess, newRefresh, _, err := t.CheckCookie(c)
		if err != nil {
			return err
		}
		t.refreshCookies(c, newAccess, newRefresh)
		return next(c)
	}
}

// AdminOnly rejects everything but requests carrying the admin role.
func (t *TokenService) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		newAccess, newRefresh, role, err := t.CheckCookie(c)
		if err != nil {
			return err
		}
		if role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		t.refreshCookies(c, newAccess, newRefresh)
		return next(c)
	}
}

// Optional parses auth cookies when present and proceeds anonymously when
// they are missing or invalid. Handlers that can serve guests use this and
// decide themselves what an empty user id means.
func (t *TokenService) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		newAccess, newRefresh, _, err := t.CheckCookie(c)
		if err == nil {
			t.refreshCookies(c, newAccess, newRefresh)
		}
		return next(c)
	}
}
