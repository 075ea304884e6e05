package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/javiermontes/mma-portal/internal/api"
	"github.com/javiermontes/mma-portal/internal/catalog"
)

func (h *Handler) dashboard(c echo.Context) error {
	return h.render(c, http.StatusOK, "admin_dashboard.html", echo.Map{})
}

// formStatus picks the response code when a submission is re-rendered.
func formStatus(err error) int {
	if errors.Is(err, catalog.ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// formUpload reads an optional uploaded file into memory. Returns nil when
// the user selected nothing, which keeps the existing media untouched.
func (h *Handler) formUpload(c echo.Context, field string) *catalog.Upload {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	src, err := fileHeader.Open()
	if err != nil {
		h.log.Error("failed to open uploaded file", "field", field, "error", err)
		return nil
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.log.Error("failed to read uploaded file", "field", field, "error", err)
		return nil
	}
	return &catalog.Upload{Filename: fileHeader.Filename, Reader: bytes.NewReader(data)}
}

func idParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Fighters

func (h *Handler) registerAdminFighters(g *echo.Group) {
	g.GET("/peleadores", h.adminFighters)
	g.GET("/peleadores/nuevo", h.adminFighterNew)
	g.POST("/peleadores/nuevo", h.adminFighterCreate)
	g.GET("/peleadores/:id/editar", h.adminFighterEdit)
	g.POST("/peleadores/:id/editar", h.adminFighterUpdate)
	g.GET("/peleadores/:id/eliminar", h.adminFighterConfirmDelete)
	g.POST("/peleadores/:id/eliminar", h.adminFighterDelete)
}

func (h *Handler) adminFighters(c echo.Context) error {
	return listPage(h, c, h.catalog.Fighters, fightersPageSize, "admin_fighters.html", adminPrefix+"/peleadores", "Fighters")
}

func (h *Handler) renderFighterForm(c echo.Context, form *catalog.FighterForm, action string, status int) error {
	return h.render(c, status, "admin_fighter_form.html", echo.Map{
		"Draft":         form.Draft(),
		"FieldErrors":   form.FieldErrors(),
		"EditingID":     form.EditingID(),
		"Loading":       form.Loading(),
		"Error":         form.ErrorMessage(),
		"Companies":     form.Companies(),
		"WeightClasses": catalog.WeightClasses,
		"Action":        action,
	})
}

func fighterFromForm(c echo.Context) catalog.Fighter {
	f := catalog.Fighter{
		FirstName:    strings.TrimSpace(c.FormValue("first_name")),
		LastName:     strings.TrimSpace(c.FormValue("last_name")),
		Nickname:     strings.TrimSpace(c.FormValue("nickname")),
		WeightClass:  c.FormValue("weight_class"),
		RecordWins:   atoi(c.FormValue("record_wins")),
		RecordLosses: atoi(c.FormValue("record_losses")),
		RecordDraws:  atoi(c.FormValue("record_draws")),
		PhotoURL:     strings.TrimSpace(c.FormValue("photo_url")),
	}
	if v := c.FormValue("company_id"); v != "" {
		id := atoi(v)
		f.CompanyID = &id
	}
	return f
}

func (h *Handler) adminFighterNew(c echo.Context) error {
	form := catalog.NewFighterForm(h.catalog, nil)
	form.OpenCreate(c.Request().Context())
	return h.renderFighterForm(c, form, adminPrefix+"/peleadores/nuevo", http.StatusOK)
}

func (h *Handler) adminFighterCreate(c echo.Context) error {
	ctx := c.Request().Context()
	form := catalog.NewFighterForm(h.catalog, nil)
	form.OpenCreate(ctx)
	form.SetDraft(fighterFromForm(c))

	if err := form.Submit(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		return h.renderFighterForm(c, form, adminPrefix+"/peleadores/nuevo", formStatus(err))
	}

	h.sessions.SetFlash(ctx, "Peleador creado con éxito!")
	return c.Redirect(http.StatusFound, adminPrefix+"/peleadores")
}

func (h *Handler) adminFighterEdit(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	form := catalog.NewFighterForm(h.catalog, nil)
	form.OpenEdit(ctx, id)
	if h.sessions.Current(ctx) == nil {
		return c.Redirect(http.StatusFound, loginPath)
	}
	return h.renderFighterForm(c, form, fmt.Sprintf("%s/peleadores/%d/editar", adminPrefix, id), http.StatusOK)
}

func (h *Handler) adminFighterUpdate(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	form := catalog.NewFighterForm(h.catalog, nil)
	form.OpenEditDraft(ctx, id, fighterFromForm(c))

	if err := form.Submit(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		return h.renderFighterForm(c, form, fmt.Sprintf("%s/peleadores/%d/editar", adminPrefix, id), formStatus(err))
	}

	h.sessions.SetFlash(ctx, "Peleador actualizado con éxito!")
	return c.Redirect(http.StatusFound, adminPrefix+"/peleadores")
}

func (h *Handler) adminFighterConfirmDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	return h.render(c, http.StatusOK, "admin_confirm_delete.html", echo.Map{
		"Question": fmt.Sprintf("¿Estás seguro de eliminar al peleador con ID %d?", id),
		"Action":   fmt.Sprintf("%s/peleadores/%d/eliminar", adminPrefix, id),
		"Cancel":   adminPrefix + "/peleadores",
	})
}

func (h *Handler) adminFighterDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	if err := h.catalog.DeleteFighter(ctx, id); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		h.sessions.SetFlash(ctx, api.Message(err, "Error al eliminar al peleador"))
	} else {
		h.sessions.SetFlash(ctx, "Peleador eliminado con éxito")
	}
	return c.Redirect(http.StatusFound, adminPrefix+"/peleadores")
}

// Companies

func (h *Handler) registerAdminCompanies(g *echo.Group) {
	g.GET("/companias", h.adminCompanies)
	g.GET("/companias/nueva", h.adminCompanyNew)
	g.POST("/companias/nueva", h.adminCompanyCreate)
	g.GET("/companias/:id/editar", h.adminCompanyEdit)
	g.POST("/companias/:id/editar", h.adminCompanyUpdate)
	g.GET("/companias/:id/eliminar", h.adminCompanyConfirmDelete)
	g.POST("/companias/:id/eliminar", h.adminCompanyDelete)
}

func (h *Handler) adminCompanies(c echo.Context) error {
	return listPage(h, c, h.catalog.Companies, companiesPageSize, "admin_companies.html", adminPrefix+"/companias", "Companies")
}

func (h *Handler) renderCompanyForm(c echo.Context, form *catalog.Form[catalog.Company], action string, status int) error {
	return h.render(c, status, "admin_company_form.html", echo.Map{
		"Draft":       form.Draft(),
		"FieldErrors": form.FieldErrors(),
		"EditingID":   form.EditingID(),
		"Loading":     form.Loading(),
		"Error":       form.ErrorMessage(),
		"Action":      action,
	})
}

func companyFromForm(c echo.Context) catalog.Company {
	return catalog.Company{
		Name:         strings.TrimSpace(c.FormValue("name")),
		Country:      strings.TrimSpace(c.FormValue("country")),
		Headquarters: strings.TrimSpace(c.FormValue("headquarters")),
		Website:      strings.TrimSpace(c.FormValue("website")),
	}
}

func (h *Handler) applyCompanyMedia(c echo.Context, form *catalog.Form[catalog.Company]) {
	if upload := h.formUpload(c, "logo"); upload != nil {
		form.AttachFile(*upload)
	} else if c.FormValue("remove_logo") != "" {
		form.RemoveMedia()
	}
}

func (h *Handler) adminCompanyNew(c echo.Context) error {
	form := catalog.NewCompanyForm(h.catalog, nil)
	form.OpenCreate(c.Request().Context())
	return h.renderCompanyForm(c, form, adminPrefix+"/companias/nueva", http.StatusOK)
}

func (h *Handler) adminCompanyCreate(c echo.Context) error {
	ctx := c.Request().Context()
	form := catalog.NewCompanyForm(h.catalog, nil)
	form.OpenCreate(ctx)
	form.SetDraft(companyFromForm(c))
	h.applyCompanyMedia(c, form)

	if err := form.Submit(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		return h.renderCompanyForm(c, form, adminPrefix+"/companias/nueva", formStatus(err))
	}

	h.sessions.SetFlash(ctx, "Compañía creada con éxito!")
	return c.Redirect(http.StatusFound, adminPrefix+"/companias")
}

func (h *Handler) adminCompanyEdit(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	form := catalog.NewCompanyForm(h.catalog, nil)
	form.OpenEdit(ctx, id)
	if h.sessions.Current(ctx) == nil {
		return c.Redirect(http.StatusFound, loginPath)
	}
	return h.renderCompanyForm(c, form, fmt.Sprintf("%s/companias/%d/editar", adminPrefix, id), http.StatusOK)
}

func (h *Handler) adminCompanyUpdate(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	form := catalog.NewCompanyForm(h.catalog, nil)
	form.OpenEditDraft(ctx, id, companyFromForm(c))
	h.applyCompanyMedia(c, form)

	if err := form.Submit(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		return h.renderCompanyForm(c, form, fmt.Sprintf("%s/companias/%d/editar", adminPrefix, id), formStatus(err))
	}

	h.sessions.SetFlash(ctx, "Compañía actualizada con éxito!")
	return c.Redirect(http.StatusFound, adminPrefix+"/companias")
}

func (h *Handler) adminCompanyConfirmDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	return h.render(c, http.StatusOK, "admin_confirm_delete.html", echo.Map{
		"Question": fmt.Sprintf("¿Estás seguro de eliminar la compañía con ID %d?", id),
		"Action":   fmt.Sprintf("%s/companias/%d/eliminar", adminPrefix, id),
		"Cancel":   adminPrefix + "/companias",
	})
}

func (h *Handler) adminCompanyDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	if err := h.catalog.DeleteCompany(ctx, id); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		// a company with fighters is rejected by the backend; the list keeps
		// showing it and the backend's message is surfaced
		h.sessions.SetFlash(ctx, api.Message(err, "Error al eliminar la compañía"))
	} else {
		h.sessions.SetFlash(ctx, "Compañía eliminada con éxito")
	}
	return c.Redirect(http.StatusFound, adminPrefix+"/companias")
}

// Events

func (h *Handler) registerAdminEvents(g *echo.Group) {
	g.GET("/eventos", h.adminEvents)
	g.GET("/eventos/nuevo", h.adminEventNew)
	g.POST("/eventos/nuevo", h.adminEventCreate)
	g.GET("/eventos/:id/editar", h.adminEventEdit)
	g.POST("/eventos/:id/editar", h.adminEventUpdate)
	g.GET("/eventos/:id/eliminar", h.adminEventConfirmDelete)
	g.POST("/eventos/:id/eliminar", h.adminEventDelete)
}

func (h *Handler) adminEvents(c echo.Context) error {
	return listPage(h, c, h.catalog.Events, eventsPageSize, "admin_events.html", adminPrefix+"/eventos", "Events")
}

func (h *Handler) renderEventForm(c echo.Context, form *catalog.EventForm, action string, status int) error {
	return h.render(c, status, "admin_event_form.html", echo.Map{
		"Draft":       form.Draft(),
		"FieldErrors": form.FieldErrors(),
		"EditingID":   form.EditingID(),
		"Loading":     form.Loading(),
		"Error":       form.ErrorMessage(),
		"Fighters":    form.Fighters(),
		"Action":      action,
	})
}

func eventFromForm(c echo.Context) catalog.Event {
	e := catalog.Event{
		Name:     strings.TrimSpace(c.FormValue("name")),
		Location: strings.TrimSpace(c.FormValue("location")),
		Date:     strings.TrimSpace(c.FormValue("date")),
	}
	if params, err := c.FormParams(); err == nil {
		for _, v := range params["fighter_ids"] {
			if id := atoi(v); id > 0 {
				e.FighterIDs = append(e.FighterIDs, id)
			}
		}
	}
	return e
}

func (h *Handler) applyEventMedia(c echo.Context, form *catalog.EventForm) {
	if upload := h.formUpload(c, "poster"); upload != nil {
		form.AttachFile(*upload)
	} else if c.FormValue("remove_poster") != "" {
		form.RemoveMedia()
	}
}

func (h *Handler) adminEventNew(c echo.Context) error {
	form := catalog.NewEventForm(h.catalog, nil)
	form.OpenCreate(c.Request().Context())
	return h.renderEventForm(c, form, adminPrefix+"/eventos/nuevo", http.StatusOK)
}

func (h *Handler) adminEventCreate(c echo.Context) error {
	ctx := c.Request().Context()
	form := catalog.NewEventForm(h.catalog, nil)
	form.OpenCreate(ctx)
	form.SetDraft(eventFromForm(c))
	h.applyEventMedia(c, form)

	if err := form.Submit(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		return h.renderEventForm(c, form, adminPrefix+"/eventos/nuevo", formStatus(err))
	}

	h.sessions.SetFlash(ctx, "Evento creado con éxito!")
	return c.Redirect(http.StatusFound, adminPrefix+"/eventos")
}

func (h *Handler) adminEventEdit(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	form := catalog.NewEventForm(h.catalog, nil)
	form.OpenEdit(ctx, id)
	if h.sessions.Current(ctx) == nil {
		return c.Redirect(http.StatusFound, loginPath)
	}
	return h.renderEventForm(c, form, fmt.Sprintf("%s/eventos/%d/editar", adminPrefix, id), http.StatusOK)
}

func (h *Handler) adminEventUpdate(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	form := catalog.NewEventForm(h.catalog, nil)
	form.OpenEditDraft(ctx, id, eventFromForm(c))
	h.applyEventMedia(c, form)

	if err := form.Submit(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		return h.renderEventForm(c, form, fmt.Sprintf("%s/eventos/%d/editar", adminPrefix, id), formStatus(err))
	}

	h.sessions.SetFlash(ctx, "Evento actualizado con éxito!")
	return c.Redirect(http.StatusFound, adminPrefix+"/eventos")
}

func (h *Handler) adminEventConfirmDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	return h.render(c, http.StatusOK, "admin_confirm_delete.html", echo.Map{
		"Question": fmt.Sprintf("¿Estás seguro de eliminar el evento con ID %d?", id),
		"Action":   fmt.Sprintf("%s/eventos/%d/eliminar", adminPrefix, id),
		"Cancel":   adminPrefix + "/eventos",
	})
}

func (h *Handler) adminEventDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	if err := h.catalog.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		h.sessions.SetFlash(ctx, api.Message(err, "Error al eliminar el evento"))
	} else {
		h.sessions.SetFlash(ctx, "Evento eliminado con éxito")
	}
	return c.Redirect(http.StatusFound, adminPrefix+"/eventos")
}

// News

func (h *Handler) registerAdminNews(g *echo.Group) {
	g.GET("/noticias", h.adminNews)
	g.GET("/noticias/nueva", h.adminNewsNew)
	g.POST("/noticias/nueva", h.adminNewsCreate)
	g.GET("/noticias/:id/editar", h.adminNewsEdit)
	g.POST("/noticias/:id/editar", h.adminNewsUpdate)
	g.GET("/noticias/:id/eliminar", h.adminNewsConfirmDelete)
	g.POST("/noticias/:id/eliminar", h.adminNewsDelete)
}

func (h *Handler) adminNews(c echo.Context) error {
	return listPage(h, c, h.catalog.News, newsPageSize, "admin_news.html", adminPrefix+"/noticias", "News")
}

func (h *Handler) renderNewsForm(c echo.Context, form *catalog.Form[catalog.News], action string, status int) error {
	return h.render(c, status, "admin_news_form.html", echo.Map{
		"Draft":       form.Draft(),
		"FieldErrors": form.FieldErrors(),
		"EditingID":   form.EditingID(),
		"Loading":     form.Loading(),
		"Error":       form.ErrorMessage(),
		"Action":      action,
	})
}

func newsFromForm(c echo.Context) catalog.News {
	return catalog.News{
		Title:   strings.TrimSpace(c.FormValue("title")),
		Content: strings.TrimSpace(c.FormValue("content")),
	}
}

func (h *Handler) applyNewsMedia(c echo.Context, form *catalog.Form[catalog.News]) {
	if upload := h.formUpload(c, "image"); upload != nil {
		form.AttachFile(*upload)
	} else if c.FormValue("remove_image") != "" {
		form.RemoveMedia()
	}
}

func (h *Handler) adminNewsNew(c echo.Context) error {
	form := catalog.NewNewsForm(h.catalog, nil)
	form.OpenCreate(c.Request().Context())
	return h.renderNewsForm(c, form, adminPrefix+"/noticias/nueva", http.StatusOK)
}

func (h *Handler) adminNewsCreate(c echo.Context) error {
	ctx := c.Request().Context()
	form := catalog.NewNewsForm(h.catalog, nil)
	form.OpenCreate(ctx)
	form.SetDraft(newsFromForm(c))
	h.applyNewsMedia(c, form)

	if err := form.Submit(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		return h.renderNewsForm(c, form, adminPrefix+"/noticias/nueva", formStatus(err))
	}

	h.sessions.SetFlash(ctx, "Noticia creada con éxito!")
	return c.Redirect(http.StatusFound, adminPrefix+"/noticias")
}

func (h *Handler) adminNewsEdit(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	form := catalog.NewNewsForm(h.catalog, nil)
	form.OpenEdit(ctx, id)
	if h.sessions.Current(ctx) == nil {
		return c.Redirect(http.StatusFound, loginPath)
	}
	return h.renderNewsForm(c, form, fmt.Sprintf("%s/noticias/%d/editar", adminPrefix, id), http.StatusOK)
}

func (h *Handler) adminNewsUpdate(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	form := catalog.NewNewsForm(h.catalog, nil)
	form.OpenEditDraft(ctx, id, newsFromForm(c))
	h.applyNewsMedia(c, form)

	if err := form.Submit(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		return h.renderNewsForm(c, form, fmt.Sprintf("%s/noticias/%d/editar", adminPrefix, id), formStatus(err))
	}

	h.sessions.SetFlash(ctx, "Noticia actualizada con éxito!")
	return c.Redirect(http.StatusFound, adminPrefix+"/noticias")
}

func (h *Handler) adminNewsConfirmDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	return h.render(c, http.StatusOK, "admin_confirm_delete.html", echo.Map{
		"Question": fmt.Sprintf("¿Estás seguro de eliminar la noticia con ID %d?", id),
		"Action":   fmt.Sprintf("%s/noticias/%d/eliminar", adminPrefix, id),
		"Cancel":   adminPrefix + "/noticias",
	})
}

func (h *Handler) adminNewsDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.render(c, http.StatusNotFound, "404.html", echo.Map{})
	}
	ctx := c.Request().Context()
	if err := h.catalog.DeleteNews(ctx, id); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect(http.StatusFound, loginPath)
		}
		h.sessions.SetFlash(ctx, api.Message(err, "Error al eliminar la noticia"))
	} else {
		h.sessions.SetFlash(ctx, "Noticia eliminada con éxito")
	}
	return c.Redirect(http.StatusFound, adminPrefix+"/noticias")
}
