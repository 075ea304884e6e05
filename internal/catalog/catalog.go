// Package catalog holds the domain layer of the portal: the entity records,
// the Manager with its typed calls against the backend, and the generic list
// and form controllers the view layers drive.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/javiermontes/mma-portal/internal/api"
)

// Upload is a media file selected for a create or update submission.
type Upload struct {
	Filename string
	Reader   io.Reader
}

type Manager struct {
	api *api.Client
	log *slog.Logger
}

func NewManager(client *api.Client, log *slog.Logger) *Manager {
	return &Manager{
		api: client,
		log: log,
	}
}

func listQuery(page, limit int, term string) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if term != "" {
		q.Set("search", term)
	}
	return q
}

// Fighters

type fightersResponse struct {
	Fighters   []Fighter  `json:"fighters"`
	Pagination Pagination `json:"pagination"`
}

func (m *Manager) Fighters(ctx context.Context, page, limit int, term string) ([]Fighter, Pagination, error) {
	var resp fightersResponse
	if err := m.api.Get(ctx, "/fighters", listQuery(page, limit, term), &resp); err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list fighters: %w", err)
	}
	return resp.Fighters, resp.Pagination, nil
}

func (m *Manager) FighterBySlug(ctx context.Context, slug string) (*Fighter, error) {
	var fighter Fighter
	if err := m.api.Get(ctx, "/fighters/slug/"+url.PathEscape(slug), nil, &fighter); err != nil {
		return nil, err
	}
	return &fighter, nil
}

func (m *Manager) FighterByID(ctx context.Context, id int) (*Fighter, error) {
	var fighter Fighter
	if err := m.api.Get(ctx, "/fighters/id/"+strconv.Itoa(id), nil, &fighter); err != nil {
		return nil, err
	}
	return &fighter, nil
}

// Fighters travel as plain JSON; they carry a photo URL but the photo file
// itself is managed through the fighter's photo_url field.
func (m *Manager) CreateFighter(ctx context.Context, f Fighter) error {
	return m.api.Post(ctx, "/fighters", f, nil)
}

func (m *Manager) UpdateFighter(ctx context.Context, id int, f Fighter) error {
	return m.api.Put(ctx, "/fighters/id/"+strconv.Itoa(id), f, nil)
}

func (m *Manager) DeleteFighter(ctx context.Context, id int) error {
	return m.api.Delete(ctx, "/fighters/id/"+strconv.Itoa(id))
}

// Companies

type companiesResponse struct {
	Companies  []Company  `json:"companies"`
	Pagination Pagination `json:"pagination"`
}

func (m *Manager) Companies(ctx context.Context, page, limit int, term string) ([]Company, Pagination, error) {
	var resp companiesResponse
	if err := m.api.Get(ctx, "/companies", listQuery(page, limit, term), &resp); err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list companies: %w", err)
	}
	return resp.Companies, resp.Pagination, nil
}

func (m *Manager) CompanyBySlug(ctx context.Context, slug string) (*Company, error) {
	var company Company
	if err := m.api.Get(ctx, "/companies/slug/"+url.PathEscape(slug), nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (m *Manager) CompanyByID(ctx context.Context, id int) (*Company, error) {
	var company Company
	if err := m.api.Get(ctx, "/companies/id/"+strconv.Itoa(id), nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

type rosterResponse struct {
	Fighters []Fighter `json:"fighters"`
}

// CompanyFighters returns the roster of a company, keyed by slug like the
// public detail route.
func (m *Manager) CompanyFighters(ctx context.Context, slug string) ([]Fighter, error) {
	var resp rosterResponse
	if err := m.api.Get(ctx, "/companies/slug/"+url.PathEscape(slug)+"/fighters", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get company roster: %w", err)
	}
	return resp.Fighters, nil
}

func companyForm(c Company, logo *Upload, removeLogo bool) *api.Form {
	form := api.NewForm()
	form.Field("name", c.Name)
	form.Field("country", c.Country)
	form.Field("headquarters", c.Headquarters)
	form.Field("website", c.Website)
	switch {
	case logo != nil:
		form.File("logo", logo.Filename, logo.Reader)
	case removeLogo:
		// explicit empty field tells the backend to clear the stored logo
		form.Field("logo_url", "")
	}
	return form
}

func (m *Manager) CreateCompany(ctx context.Context, c Company, logo *Upload) error {
	return m.api.PostForm(ctx, "/companies", companyForm(c, logo, false), nil)
}

func (m *Manager) UpdateCompany(ctx context.Context, id int, c Company, logo *Upload, removeLogo bool) error {
	return m.api.PutForm(ctx, "/companies/id/"+strconv.Itoa(id), companyForm(c, logo, removeLogo), nil)
}

func (m *Manager) DeleteCompany(ctx context.Context, id int) error {
	return m.api.Delete(ctx, "/companies/id/"+strconv.Itoa(id))
}

// Events

type eventsResponse struct {
	Events     []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}

func (m *Manager) Events(ctx context.Context, page, limit int, term string) ([]Event, Pagination, error) {
	var resp eventsResponse
	if err := m.api.Get(ctx, "/events", listQuery(page, limit, term), &resp); err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list events: %w", err)
	}
	return resp.Events, resp.Pagination, nil
}

func (m *Manager) EventBySlug(ctx context.Context, slug string) (*Event, error) {
	var event Event
	if err := m.api.Get(ctx, "/events/slug/"+url.PathEscape(slug), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (m *Manager) EventByID(ctx context.Context, id int) (*Event, error) {
	var event Event
	if err := m.api.Get(ctx, "/events/id/"+strconv.Itoa(id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// EventFighters returns the roster of an event. The join is keyed by the
// numeric id, which is only known once the event itself has loaded.
func (m *Manager) EventFighters(ctx context.Context, id int) ([]Fighter, error) {
	var resp rosterResponse
	if err := m.api.Get(ctx, "/events/id/"+strconv.Itoa(id)+"/fighters", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get event roster: %w", err)
	}
	return resp.Fighters, nil
}

func eventForm(e Event, poster *Upload, removePoster bool) *api.Form {
	form := api.NewForm()
	form.Field("name", e.Name)
	form.Field("location", e.Location)
	form.Field("date", e.Date)
	for _, id := range e.FighterIDs {
		form.Field("fighter_ids", strconv.Itoa(id))
	}
	switch {
	case poster != nil:
		form.File("poster", poster.Filename, poster.Reader)
	case removePoster:
		form.Field("poster_url", "")
	}
	return form
}

func (m *Manager) CreateEvent(ctx context.Context, e Event, poster *Upload) error {
	return m.api.PostForm(ctx, "/events", eventForm(e, poster, false), nil)
}

func (m *Manager) UpdateEvent(ctx context.Context, id int, e Event, poster *Upload, removePoster bool) error {
	return m.api.PutForm(ctx, "/events/id/"+strconv.Itoa(id), eventForm(e, poster, removePoster), nil)
}

func (m *Manager) DeleteEvent(ctx context.Context, id int) error {
	return m.api.Delete(ctx, "/events/id/"+strconv.Itoa(id))
}

// News

type newsResponse struct {
	News       []News     `json:"news"`
	Pagination Pagination `json:"pagination"`
}

func (m *Manager) News(ctx context.Context, page, limit int, term string) ([]News, Pagination, error) {
	var resp newsResponse
	if err := m.api.Get(ctx, "/news", listQuery(page, limit, term), &resp); err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list news: %w", err)
	}
	return resp.News, resp.Pagination, nil
}

func (m *Manager) NewsBySlug(ctx context.Context, slug string) (*News, error) {
	var item News
	if err := m.api.Get(ctx, "/news/slug/"+url.PathEscape(slug), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (m *Manager) NewsByID(ctx context.Context, id int) (*News, error) {
	var item News
	if err := m.api.Get(ctx, "/news/id/"+strconv.Itoa(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func newsForm(n News, image *Upload, removeImage bool) *api.Form {
	form := api.NewForm()
	form.Field("title", n.Title)
	form.Field("content", n.Content)
	switch {
	case image != nil:
		form.File("image", image.Filename, image.Reader)
	case removeImage:
		form.Field("image_url", "")
	}
	return form
}

func (m *Manager) CreateNews(ctx context.Context, n News, image *Upload) error {
	return m.api.PostForm(ctx, "/news", newsForm(n, image, false), nil)
}

func (m *Manager) UpdateNews(ctx context.Context, id int, n News, image *Upload, removeImage bool) error {
	return m.api.PutForm(ctx, "/news/id/"+strconv.Itoa(id), newsForm(n, image, removeImage), nil)
}

func (m *Manager) DeleteNews(ctx context.Context, id int) error {
	return m.api.Delete(ctx, "/news/id/"+strconv.Itoa(id))
}
