package http

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flowboard/core/internal/application/services"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer renders the embedded page templates for echo.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() *Renderer {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"login", "register", "board"} {
		pages[name] = template.Must(template.ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name+".tmpl"))
	}
	return &Renderer{pages: pages}
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	page, ok := r.pages[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "unknown page "+name)
	}
	return page.ExecuteTemplate(w, name+".tmpl", data)
}

// PageHandler serves the browser pages.
type PageHandler struct {
	boards   *services.BoardService
	registry *services.BoardRegistry
	logger   *logger.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(boards *services.BoardService, registry *services.BoardRegistry, logger *logger.Logger) *PageHandler {
	return &PageHandler{boards: boards, registry: registry, logger: logger}
}

// Login renders the sign-in form. After signing in the browser returns to
// the path given in ?from=.
func (h *PageHandler) Login(c echo.Context) error {
	return c.Render(http.StatusOK, "login", map[string]any{
		"Title": "Sign in",
		"From":  SafeRedirect(c.QueryParam("from")),
	})
}

// Register renders the sign-up form.
func (h *PageHandler) Register(c echo.Context) error {
	return c.Render(http.StatusOK, "register", map[string]any{
		"Title":       "Register",
		"MinPassword": services.MinPasswordLength,
	})
}

// Board renders the viewer's lanes.
func (h *PageHandler) Board(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	board := h.registry.Acquire(c.Request().Context(), sessionToken(c))
	view, err := h.boards.View(user.Viewer(), board, c.QueryParam("priority"))
	if err != nil {
		view, _ = h.boards.View(user.Viewer(), board, "all")
	}

	return c.Render(http.StatusOK, "board", struct {
		Title   string
		User    *entities.User
		View    ports.BoardView
		Filters []string
		Lanes   []entities.TaskStatus
	}{
		Title:   "Board",
		User:    user,
		View:    view,
		Filters: []string{"all", string(entities.PriorityHigh), string(entities.PriorityMedium), string(entities.PriorityLow)},
		Lanes:   entities.Lanes,
	})
}

// SafeRedirect keeps redirects on this site.
func SafeRedirect(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return "/"
	}
	return from
}
