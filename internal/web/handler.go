// Package web is the portal's view layer: echo routes rendering the public
// catalog pages and the role-gated admin panel from the catalog controllers.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v4"

	"github.com/javiermontes/mma-portal/internal/api"
	"github.com/javiermontes/mma-portal/internal/catalog"
	"github.com/javiermontes/mma-portal/internal/session"
)

const (
	homePath     = "/"
	loginPath    = "/login"
	logoutPath   = "/logout"
	healthPath   = "/health"
	adminPrefix  = "/admin"
	dashboardURL = adminPrefix + "/dashboard"

	// default page sizes per collection
	fightersPageSize  = 10
	companiesPageSize = 10
	eventsPageSize    = 10
	newsPageSize      = 5

	msgLoadFailed = "No se pudieron cargar los datos. Inténtalo de nuevo más tarde."
)

type Handler struct {
	catalog  *catalog.Manager
	sessions *session.Store
	manager  *scs.SessionManager
	log      *slog.Logger
}

func NewHandler(cat *catalog.Manager, store *session.Store, manager *scs.SessionManager, log *slog.Logger) *Handler {
	return &Handler{
		catalog:  cat,
		sessions: store,
		manager:  manager,
		log:      log,
	}
}

// RegisterRoutes builds the echo instance with session loading, request
// logging and all public and admin routes.
func (h *Handler) RegisterRoutes(renderer *Renderer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(echo.WrapMiddleware(h.manager.LoadAndSave))
	e.Use(h.requestLogger)

	e.GET(healthPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.StaticFS("/images", echo.MustSubFS(staticFS, "static/images"))

	e.GET(homePath, h.home)
	e.GET("/peleadores", h.fighters)
	e.GET("/peleadores/:slug", h.fighterDetail)
	e.GET("/companias", h.companies)
	e.GET("/companias/:slug", h.companyDetail)
	e.GET("/eventos", h.events)
	e.GET("/eventos/:slug", h.eventDetail)
	e.GET("/noticias", h.news)
	e.GET("/noticias/:slug", h.newsDetail)

	e.GET(loginPath, h.loginPage)
	e.POST(loginPath, h.login)
	e.POST(logoutPath, h.logout)

	admin := e.Group(adminPrefix, h.requireRole(session.RoleAdmin))
	admin.GET("/dashboard", h.dashboard)
	h.registerAdminFighters(admin)
	h.registerAdminCompanies(admin)
	h.registerAdminEvents(admin)
	h.registerAdminNews(admin)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	})

	return e
}

// requireRole gates a route sub-tree: anonymous users go to the login view,
// wrong roles go home. The session is re-read on every request, so a logout
// takes effect immediately.
func (h *Handler) requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := h.sessions.Current(c.Request().Context())
			if user == nil {
				return c.Redirect(http.StatusFound, loginPath)
			}
			if role != "" && user.Role != role {
				return c.Redirect(http.StatusFound, homePath)
			}
			return next(c)
		}
	}
}

func (h *Handler) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		h.log.Info("HTTP request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.RealIP(),
		)
		return err
	}
}

func (h *Handler) render(c echo.Context, code int, page string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	ctx := c.Request().Context()
	data["User"] = h.sessions.Current(ctx)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = h.sessions.Flash(ctx)
	}
	return c.Render(code, page, data)
}

// fail maps a backend error to the right page. The 401 redirect applies
// globally: the api client already dropped the session by the time the
// error reaches a handler.
func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return c.Redirect(http.StatusFound, loginPath)
	case errors.Is(err, api.ErrNotFound):
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	h.log.Error("request against backend failed", "path", c.Request().URL.Path, "error", err)
	return h.render(c, http.StatusInternalServerError, "error.html", echo.Map{
		"Message": api.Message(err, msgLoadFailed),
	})
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
