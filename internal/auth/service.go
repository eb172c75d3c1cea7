package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func NewCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// CheckCookie validates the access cookie, falling back to refresh-token
// rotation when the access token is expired. It returns the (possibly new)
// access token, a new refresh token when rotation happened, and the role.
func (t *TokenService) CheckCookie(c echo.Context) (string, string, string, error) {
	asCookie, err := c.Cookie("accessToken")
	if err == nil {
		token, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
			return t.JWTSecret, nil
		})
		if err == nil && token.Valid {
			claims := token.Claims.(jwt.MapClaims)
			role, ok := claims["role"].(string)
			if !ok {
				return "", "", "", echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			setUserContext(c, claims)
			return asCookie.Value, "", role, nil
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
	}

	rfCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing auth cookie")
	}
	newAccess, newRefresh, claims, err := t.RotateToken(rfCookie.Value)
	if err != nil {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	setUserContext(c, claims)
	return newAccess, newRefresh, role, nil
}

// RotateToken exchanges a valid refresh token for a fresh access/refresh pair.
func (t *TokenService) RotateToken(rawToken string) (string, string, jwt.MapClaims, error) {
	claims, err := ValidateRefresh(rawToken, t.RefreshSecret, t.DB)
	if err != nil {
		return "", "", nil, err
	}

	userID := uint(claims["sub"].(float64))
	role, _ := claims["role"].(string)

	newAccess, err := SignAccessToken(userID, role, t.JWTSecret)
	if err != nil {
		return "", "", nil, err
	}
	newRefresh, err := SignRefreshToken(userID, role, t.RefreshSecret)
	if err != nil {
		return "", "", nil, err
	}
	if err := SaveRefreshToken(t.DB, newRefresh, userID, role); err != nil {
		return "", "", nil, err
	}

	return newAccess, newRefresh, claims, nil
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	if sub, ok := claims["sub"].(float64); ok {
		c.Set("userID", uint(sub))
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}

// UserID returns the authenticated user id from the echo context, zero when
// the request is anonymous.
func UserID(c echo.Context) uint {
	if v, ok := c.Get("userID").(uint); ok {
		return v
	}
	return 0
}

// Role returns the authenticated role, empty when anonymous.
func Role(c echo.Context) string {
	if v, ok := c.Get("role").(string); ok {
		return v
	}
	return ""
}
