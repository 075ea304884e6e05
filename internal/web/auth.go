package web

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/javiermontes/mma-portal/internal/api"
	"github.com/javiermontes/mma-portal/internal/session"
)

func (h *Handler) loginPage(c echo.Context) error {
	if user := h.sessions.Current(c.Request().Context()); user != nil {
		if user.Role == session.RoleAdmin {
			return c.Redirect(http.StatusFound, dashboardURL)
		}
		return c.Redirect(http.StatusFound, homePath)
	}
	return h.render(c, http.StatusOK, "login.html", echo.Map{"Email": ""})
}

func (h *Handler) login(c echo.Context) error {
	ctx := c.Request().Context()
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	user, err := h.sessions.Login(ctx, email, password)
	if err != nil {
		return h.render(c, http.StatusUnauthorized, "login.html", echo.Map{
			"Error": api.Message(err, "Error de conexión con el servidor."),
			"Email": email,
		})
	}

	if user.Role == session.RoleAdmin {
		return c.Redirect(http.StatusFound, dashboardURL)
	}
	return c.Redirect(http.StatusFound, homePath)
}

func (h *Handler) logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.Redirect(http.StatusFound, homePath)
}
