package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/flowboard/core/internal/application/services"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

// Context keys set by the server's auth middleware
const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// TokenFromRequest returns the session token from the cookie or, failing
// that, from a bearer Authorization header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	registry    *services.BoardRegistry
	cookie      CookieConfig
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, registry *services.BoardRegistry, cookie CookieConfig, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		registry:    registry,
		cookie:      cookie,
		logger:      logger,
	}
}

// Register handles sign-up
// @Summary Register
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body ports.RegisterRequest true "Registration form"
// @Success 201 {object} ports.AuthResponse
// @Failure 400 {object} ports.MessageResponse
// @Failure 401 {object} ports.MessageResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Registration failed", "error", err, "email", req.Email)
		return MapError(err)
	}

	h.setCookie(c, response.Token)
	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
// @Summary Login
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body ports.LoginRequest true "Credentials"
// @Success 200 {object} ports.AuthResponse
// @Failure 401 {object} ports.MessageResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.LogSecurityEvent("login_failed", 0, c.RealIP(), map[string]interface{}{"email": req.Email})
		return MapError(err)
	}

	h.setCookie(c, response.Token)
	return c.JSON(http.StatusOK, response)
}

// Logout clears the session cookie and the session's board.
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Success 200 {object} ports.MessageResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := TokenFromRequest(c.Request(), h.cookie.Name)

	h.clearCookie(c)
	h.registry.Drop(token)

	if token != "" {
		if err := h.authService.Logout(c.Request().Context(), token); err != nil {
			h.logger.Warnw("Logout failed", "error", err)
			return MapError(err)
		}
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Logged out successfully"})
}

// Me returns the signed-in user.
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Success 200 {object} entities.User
// @Failure 401 {object} ports.MessageResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentUser returns the user the auth middleware resolved.
func CurrentUser(c echo.Context) (*entities.User, error) {
	user, ok := c.Get(ContextUserKey).(*entities.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return user, nil
}

func sessionToken(c echo.Context) string {
	token, _ := c.Get(ContextTokenKey).(string)
	return token
}

// MapError translates domain errors into HTTP errors.
func MapError(err error) error {
	var (
		httpErr   *echo.HTTPError
		validErrs validator.ValidationErrors
		authErr   *entities.AuthError
		storeErr  *entities.StoreError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &validErrs):
		return echo.NewHTTPError(http.StatusBadRequest, validErrs.Error())
	case errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrPasswordMismatch),
		errors.Is(err, services.ErrInvalidFilter),
		errors.Is(err, entities.ErrInvalidLane):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, ports.ErrEmailTaken.Error())
	case errors.Is(err, entities.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	case errors.Is(err, entities.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	case errors.As(err, &authErr), errors.Is(err, entities.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
	case errors.As(err, &storeErr):
		return echo.NewHTTPError(http.StatusBadGateway, "Task store request failed").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
}
