package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/javiermontes/mma-portal/internal/api"
	"github.com/javiermontes/mma-portal/internal/catalog"
)

func (h *Handler) home(c echo.Context) error {
	ctx := c.Request().Context()

	var upcoming []catalog.Event
	events, _, err := h.catalog.Events(ctx, 1, eventsPageSize, "")
	if err != nil {
		h.log.Error("failed to load events for home page", "error", err)
	} else {
		now := time.Now()
		for _, e := range events {
			if !e.Completed(now) {
				upcoming = append(upcoming, e)
			}
		}
	}

	news, _, err := h.catalog.News(ctx, 1, newsPageSize, "")
	if err != nil {
		h.log.Error("failed to load news for home page", "error", err)
	}

	return h.render(c, http.StatusOK, "home.html", echo.Map{
		"Events": upcoming,
		"News":   news,
	})
}

// listPage runs one paginated, searchable collection fetch and hands the
// controller state to the template. Every public and admin list view goes
// through this shape; only the fetch function, the page size and the
// template differ.
func listPage[T any](h *Handler, c echo.Context, fetch catalog.FetchFunc[T], limit int, template, basePath, itemsKey string) error {
	ctx := c.Request().Context()
	term := strings.TrimSpace(c.QueryParam("search"))

	list := catalog.NewList(fetch, catalog.WithLimit[T](limit))
	defer list.Close()

	err := list.Fetch(ctx, pageParam(c), limit, term)
	if err != nil && errors.Is(err, api.ErrUnauthorized) {
		return c.Redirect(http.StatusFound, loginPath)
	}

	data := echo.Map{
		itemsKey:     list.Items(),
		"Pagination": list.Pagination(),
		"Term":       term,
		"BasePath":   basePath,
	}
	if listErr := list.Err(); listErr != nil {
		data["Error"] = api.Message(listErr, msgLoadFailed)
	}
	return h.render(c, http.StatusOK, template, data)
}

func (h *Handler) fighters(c echo.Context) error {
	return listPage(h, c, h.catalog.Fighters, fightersPageSize, "fighters.html", "/peleadores", "Fighters")
}

func (h *Handler) companies(c echo.Context) error {
	return listPage(h, c, h.catalog.Companies, companiesPageSize, "companies.html", "/companias", "Companies")
}

func (h *Handler) events(c echo.Context) error {
	return listPage(h, c, h.catalog.Events, eventsPageSize, "events.html", "/eventos", "Events")
}

func (h *Handler) news(c echo.Context) error {
	return listPage(h, c, h.catalog.News, newsPageSize, "news.html", "/noticias", "News")
}

func (h *Handler) fighterDetail(c echo.Context) error {
	fighter, err := h.catalog.FighterBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, http.StatusOK, "fighter_detail.html", echo.Map{"Fighter": fighter})
}

func (h *Handler) companyDetail(c echo.Context) error {
	detail, err := h.catalog.CompanyDetail(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, http.StatusOK, "company_detail.html", echo.Map{"Detail": detail})
}

func (h *Handler) eventDetail(c echo.Context) error {
	detail, err := h.catalog.EventDetail(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, http.StatusOK, "event_detail.html", echo.Map{"Detail": detail})
}

func (h *Handler) newsDetail(c echo.Context) error {
	item, err := h.catalog.NewsBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.render(c, http.StatusOK, "news_detail.html", echo.Map{"Item": item})
}
