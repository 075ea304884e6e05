package catalog

import (
	"context"
	"strings"
	"sync"
)

// referenceLimit caps the side-channel lists the forms load for their
// dropdowns (companies for the fighter form, fighters for the event roster).
const referenceLimit = 100

// FighterForm manages the fighter draft plus the company reference list for
// the affiliation dropdown.
type FighterForm struct {
	*Form[Fighter]

	mgr *Manager

	mu        sync.Mutex
	companies []Company
}

func NewFighterForm(mgr *Manager, onSaved func(ctx context.Context)) *FighterForm {
	ff := &FighterForm{mgr: mgr}
	ff.Form = &Form[Fighter]{
		defaults: func() Fighter { return Fighter{} },
		loadByID: mgr.FighterByID,
		create: func(ctx context.Context, draft Fighter, _ *Upload) error {
			return mgr.CreateFighter(ctx, draft)
		},
		update: func(ctx context.Context, id int, draft Fighter, _ *Upload, _ bool) error {
			return mgr.UpdateFighter(ctx, id, draft)
		},
		validate: ValidateFighter,
		onSaved:  onSaved,
		onOpen:   ff.loadCompanies,
	}
	return ff
}

func (ff *FighterForm) loadCompanies(ctx context.Context) {
	companies, _, err := ff.mgr.Companies(ctx, 1, referenceLimit, "")
	if err != nil {
		ff.mgr.log.Error("failed to load companies for fighter form", "error", err)
		return
	}
	ff.mu.Lock()
	ff.companies = companies
	ff.mu.Unlock()
}

func (ff *FighterForm) Companies() []Company {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return ff.companies
}

func ValidateFighter(f Fighter) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.FirstName) == "" {
		errs["first_name"] = "El campo nombre es obligatorio"
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs["last_name"] = "El campo apellido es obligatorio"
	}
	if !ValidWeightClass(f.WeightClass) {
		errs["weight_class"] = "Selecciona un peso para el peleador"
	}
	if f.RecordWins < 0 || f.RecordLosses < 0 || f.RecordDraws < 0 {
		errs["record"] = "Las estadísticas de combate no pueden ser negativas"
	}
	return errs
}

func NewCompanyForm(mgr *Manager, onSaved func(ctx context.Context)) *Form[Company] {
	return &Form[Company]{
		defaults: func() Company { return Company{} },
		loadByID: mgr.CompanyByID,
		create: func(ctx context.Context, draft Company, file *Upload) error {
			return mgr.CreateCompany(ctx, draft, file)
		},
		update: func(ctx context.Context, id int, draft Company, file *Upload, removeMedia bool) error {
			return mgr.UpdateCompany(ctx, id, draft, file, removeMedia)
		},
		validate: ValidateCompany,
		onSaved:  onSaved,
	}
}

func ValidateCompany(c Company) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "El campo nombre es obligatorio"
	}
	if strings.TrimSpace(c.Country) == "" {
		errs["country"] = "El campo país es obligatorio"
	}
	return errs
}

// EventForm manages the event draft plus the fighter reference list for the
// roster selection.
type EventForm struct {
	*Form[Event]

	mgr *Manager

	mu       sync.Mutex
	fighters []Fighter
}

func NewEventForm(mgr *Manager, onSaved func(ctx context.Context)) *EventForm {
	ef := &EventForm{mgr: mgr}
	ef.Form = &Form[Event]{
		defaults: func() Event { return Event{} },
		loadByID: mgr.EventByID,
		create: func(ctx context.Context, draft Event, file *Upload) error {
			return mgr.CreateEvent(ctx, draft, file)
		},
		update: func(ctx context.Context, id int, draft Event, file *Upload, removeMedia bool) error {
			return mgr.UpdateEvent(ctx, id, draft, file, removeMedia)
		},
		validate: ValidateEvent,
		onSaved:  onSaved,
		onOpen:   ef.loadFighters,
	}
	return ef
}

func (ef *EventForm) loadFighters(ctx context.Context) {
	fighters, _, err := ef.mgr.Fighters(ctx, 1, referenceLimit, "")
	if err != nil {
		ef.mgr.log.Error("failed to load fighters for event form", "error", err)
		return
	}
	ef.mu.Lock()
	ef.fighters = fighters
	ef.mu.Unlock()
}

func (ef *EventForm) Fighters() []Fighter {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	return ef.fighters
}

func ValidateEvent(e Event) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(e.Name) == "" {
		errs["name"] = "El campo nombre es obligatorio"
	}
	if strings.TrimSpace(e.Location) == "" {
		errs["location"] = "El campo ubicación es obligatorio"
	}
	if strings.TrimSpace(e.Date) == "" {
		errs["date"] = "El campo fecha es obligatorio"
	} else if _, err := e.Day(); err != nil {
		errs["date"] = "La fecha no tiene un formato válido"
	}
	return errs
}

func NewNewsForm(mgr *Manager, onSaved func(ctx context.Context)) *Form[News] {
	return &Form[News]{
		defaults: func() News { return News{} },
		loadByID: mgr.NewsByID,
		create: func(ctx context.Context, draft News, file *Upload) error {
			return mgr.CreateNews(ctx, draft, file)
		},
		update: func(ctx context.Context, id int, draft News, file *Upload, removeMedia bool) error {
			return mgr.UpdateNews(ctx, id, draft, file, removeMedia)
		},
		validate: ValidateNews,
		onSaved:  onSaved,
	}
}

func ValidateNews(n News) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(n.Title) == "" {
		errs["title"] = "El campo título es obligatorio"
	}
	if strings.TrimSpace(n.Content) == "" {
		errs["content"] = "El campo contenido es obligatorio"
	}
	return errs
}
