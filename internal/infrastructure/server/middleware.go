package server

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/flowboard/core/internal/adapters/http"
	"github.com/flowboard/core/internal/application/services"
)

var publicPaths = map[string]bool{
	"/login":             true,
	"/register":          true,
	"/api/auth/login":    true,
	"/api/auth/register": true,
	"/api/auth/logout":   true,
}

func isHealthPath(p string) bool {
	return p == "/ready" || p == "/metrics" || p == "/health" || strings.HasPrefix(p, "/health/")
}

// isPublic lists what the session boundary lets through without a token.
func isPublic(p string) bool {
	switch {
	case publicPaths[p], isHealthPath(p):
		return true
	case strings.HasPrefix(p, "/swagger"), strings.HasPrefix(p, "/static/"):
		return true
	case path.Ext(p) != "":
		return true
	}
	return false
}

func isAPI(p string) bool {
	return strings.HasPrefix(p, "/api/")
}

// sessionBoundary only checks that a session token is present. Browsers
// without one are sent to the login page with the requested path in
// ?from=, API clients get 401.
func (s *Server) sessionBoundary() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := c.Request().URL.Path
			if isPublic(p) {
				return next(c)
			}

			if httpHandlers.TokenFromRequest(c.Request(), s.config.Session.CookieName) != "" {
				return next(c)
			}

			if isAPI(p) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			return c.Redirect(http.StatusFound, loginRedirect(c.Request().URL))
		}
	}
}

// authMiddleware resolves the session token to a user. The token is put on
// the request context so store adapters act on the user's behalf.
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			token := httpHandlers.TokenFromRequest(req, s.config.Session.CookieName)

			session := services.NewSession(s.deps.Auth)
			if err := session.Init(req.Context(), token); err != nil {
				s.logger.LogSecurityEvent("invalid_session", 0, c.RealIP(), map[string]interface{}{
					"error": err.Error(),
					"path":  req.URL.Path,
				})
				s.deps.Registry.Drop(token)
				if isAPI(req.URL.Path) {
					return httpHandlers.MapError(err)
				}
				c.SetCookie(&http.Cookie{Name: s.config.Session.CookieName, Path: "/", MaxAge: -1})
				return c.Redirect(http.StatusFound, loginRedirect(req.URL))
			}

			user, _ := session.User()
			c.Set(httpHandlers.ContextUserKey, &user)
			c.Set(httpHandlers.ContextTokenKey, token)
			c.SetRequest(req.WithContext(session.Context(req.Context())))

			return next(c)
		}
	}
}

func loginRedirect(u *url.URL) string {
	from := u.Path
	if u.RawQuery != "" {
		from += "?" + u.RawQuery
	}
	return "/login?from=" + url.QueryEscape(from)
}
