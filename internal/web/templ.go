package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/javiermontes/mma-portal/internal/api"
	"github.com/javiermontes/mma-portal/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

// placeholder images served under /images when a catalog entry has no media
//
//go:embed static
var staticFS embed.FS

// shared templates parsed into every page's set
var sharedTemplates = map[string]bool{
	"layout.html":     true,
	"pagination.html": true,
}

// Renderer implements echo.Renderer over the embedded templates. Each page
// gets its own template set so pages can redefine the layout's blocks
// without clashing.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer(mediaOrigin string) (*Renderer, error) {
	funcs := template.FuncMap{
		"media": func(ref string) string {
			return api.ResolveMediaURL(mediaOrigin, ref)
		},
		"fecha": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"completado": func(e catalog.Event) bool {
			return e.Completed(time.Now())
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"deref": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
		"en": func(ids []int, id int) bool {
			for _, v := range ids {
				if v == id {
					return true
				}
			}
			return false
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, entry := range entries {
		name := entry.Name()
		if sharedTemplates[name] {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/pagination.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
		}
		templates[name] = t
	}

	return &Renderer{templates: templates}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
