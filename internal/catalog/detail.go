package catalog

import (
	"context"
)

// CompanyDetail is a company joined with its roster for the public detail
// page. The roster is fetched after the company resolves; a roster failure
// does not invalidate the already-loaded company and is reported through
// RosterErr instead.
type CompanyDetail struct {
	Company   Company
	Fighters  []Fighter
	RosterErr error
}

func (m *Manager) CompanyDetail(ctx context.Context, slug string) (*CompanyDetail, error) {
	company, err := m.CompanyBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	detail := &CompanyDetail{Company: *company}

	fighters, err := m.CompanyFighters(ctx, slug)
	if err != nil {
		m.log.Error("failed to load company roster", "slug", slug, "error", err)
		detail.RosterErr = err
		return detail, nil
	}

	detail.Fighters = fighters
	return detail, nil
}

// EventDetail mirrors CompanyDetail for events. The second request needs the
// numeric id from the first, so the two are sequential.
type EventDetail struct {
	Event     Event
	Fighters  []Fighter
	RosterErr error
}

func (m *Manager) EventDetail(ctx context.Context, slug string) (*EventDetail, error) {
	event, err := m.EventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	detail := &EventDetail{Event: *event}

	fighters, err := m.EventFighters(ctx, event.ID)
	if err != nil {
		m.log.Error("failed to load event roster", "slug", slug, "id", event.ID, "error", err)
		detail.RosterErr = err
		return detail, nil
	}

	detail.Fighters = fighters
	return detail, nil
}
