package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/apperr"
	"github.com/outlawshop/storefront/internal/auth"
	"github.com/outlawshop/storefront/internal/hash"
	"github.com/outlawshop/storefront/internal/logging"
	"github.com/outlawshop/storefront/internal/models"
	"github.com/outlawshop/storefront/internal/mykafka"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *auth.TokenService
	Producer *mykafka.Producer
	Dev      bool
}

type credentials struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

func (req *credentials) validateRegister() error {
	if len(strings.TrimSpace(req.Username)) < 3 {
		return apperr.WithField(apperr.InvalidInput, "username", "username must be at least 3 characters")
	}
	if !strings.Contains(req.Email, "@") {
		return apperr.WithField(apperr.InvalidInput, "email", "a valid email is required")
	}
	if len(req.Password) < 8 {
		return apperr.WithField(apperr.InvalidInput, "password", "password must be at least 8 characters")
	}
	return nil
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
	}
	if err := req.validateRegister(); err != nil {
		return fail(c, h.Dev, err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.Internal, "failed to hash password", err))
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: pwHash,
		Role:         "user",
		IsActive:     true,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, h.Dev, apperr.New(apperr.Conflict, "username or email already taken"))
		}
		return fail(c, h.Dev, apperr.Wrap(apperr.Internal, "failed to create user", err))
	}

	h.publishUserEvent(c, "user_registered", &user)

	if err := h.issueCookies(c, &user); err != nil {
		return fail(c, h.Dev, err)
	}
	c.Set("userID", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Dev, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
	}

	var user models.User
	q := h.DB.WithContext(c.Request().Context())
	if req.Email != "" {
		q = q.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email)))
	} else {
		q = q.Where("username = ?", strings.TrimSpace(req.Username))
	}
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, h.Dev, apperr.New(apperr.Unauthenticated, "invalid credentials"))
		}
		return fail(c, h.Dev, apperr.Wrap(apperr.Internal, "failed to load user", err))
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return fail(c, h.Dev, apperr.New(apperr.Unauthenticated, "invalid credentials"))
	}
	if !user.IsActive {
		return fail(c, h.Dev, apperr.New(apperr.Forbidden, "account is deactivated"))
	}

	h.publishUserEvent(c, "user_logged_in", &user)

	if err := h.issueCookies(c, &user); err != nil {
		return fail(c, h.Dev, err)
	}
	c.Set("userID", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if ck, err := c.Cookie("refreshToken"); err == nil && ck.Value != "" {
		err := h.DB.WithContext(ctx).
			Model(&models.RefreshToken{}).
			Where("token = ?", ck.Value).
			Update("revoked", true).Error
		if err != nil {
			logging.FromContext(ctx).Error("refresh token revoke failed", "error", err)
		}
	}

	expired := time.Unix(0, 0)
	c.SetCookie(auth.NewCookie("accessToken", "", "/", expired))
	c.SetCookie(auth.NewCookie("refreshToken", "", "/", expired))
	c.Set("userID", uint(0))
	return c.JSON(http.StatusOK, echo.Map{"status": "logged out"})
}

func (h *AuthHandler) issueCookies(c echo.Context, user *models.User) error {
	access, err := auth.SignAccessToken(user.ID, user.Role, h.Tokens.JWTSecret)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to sign access token", err)
	}
	refresh, err := auth.SignRefreshToken(user.ID, user.Role, h.Tokens.RefreshSecret)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to sign refresh token", err)
	}
	if err := auth.SaveRefreshToken(h.DB, refresh, user.ID, user.Role); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to store refresh token", err)
	}

	c.SetCookie(auth.NewCookie("accessToken", access, "/", time.Now().Add(auth.AccessTokenTTL)))
	c.SetCookie(auth.NewCookie("refreshToken", refresh, "/", time.Now().Add(auth.RefreshTokenTTL)))
	return nil
}

func (h *AuthHandler) publishUserEvent(c echo.Context, eventType string, user *models.User) {
	ctx := c.Request().Context()
	event := map[string]interface{}{
		"type":     eventType,
		"userID":   user.ID,
		"username": user.Username,
	}
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(user.ID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
