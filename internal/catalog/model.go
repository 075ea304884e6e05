package catalog

import (
	"time"
)

// Pagination is the envelope every list endpoint returns and every list
// request round-trips back.
type Pagination struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	Limit       int `json:"limit"`
}

// WeightClasses is the fixed label set the backend accepts for a fighter.
var WeightClasses = []string{
	"Peso Paja", "Peso Mosca", "Peso Gallo", "Peso Pluma",
	"Peso Ligero", "Peso Welter", "Peso Mediano", "Peso Pesado",
}

func ValidWeightClass(s string) bool {
	for _, wc := range WeightClasses {
		if wc == s {
			return true
		}
	}
	return false
}

type Fighter struct {
	ID           int    `json:"fighter_id"`
	Slug         string `json:"slug"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Nickname     string `json:"nickname"`
	WeightClass  string `json:"weight_class"`
	RecordWins   int    `json:"record_wins"`
	RecordLosses int    `json:"record_losses"`
	RecordDraws  int    `json:"record_draws"`
	CompanyID    *int   `json:"company_id"`
	CompanyName  string `json:"company_name"`
	PhotoURL     string `json:"photo_url"`
}

func (f Fighter) FullName() string {
	return f.FirstName + " " + f.LastName
}

type Company struct {
	ID           int    `json:"company_id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	Headquarters string `json:"headquarters"`
	Website      string `json:"website"`
	LogoURL      string `json:"logo_url"`
}

type Event struct {
	ID          int    `json:"event_id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	IsCompleted *bool  `json:"is_completed"`
	PosterURL   string `json:"poster_url"`

	// FighterIDs is the roster selection sent on create/update. Reads get
	// the roster from the dedicated fighters endpoint instead.
	FighterIDs []int `json:"fighter_ids,omitempty"`
}

// eventDateLayout covers both bare dates and the timestamp form some
// endpoints return; only the date part matters.
const eventDateLayout = "2006-01-02"

func (e Event) Day() (time.Time, error) {
	raw := e.Date
	if len(raw) > len(eventDateLayout) {
		raw = raw[:len(eventDateLayout)]
	}
	return time.Parse(eventDateLayout, raw)
}

// Completed reports whether the event already took place. The backend's
// is_completed takes precedence when present; otherwise it is derived by
// comparing the event date against now, date-only.
func (e Event) Completed(now time.Time) bool {
	if e.IsCompleted != nil {
		return *e.IsCompleted
	}
	day, err := e.Day()
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}

type News struct {
	ID          int       `json:"news_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url"`
}
