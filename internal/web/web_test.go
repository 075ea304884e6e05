package web

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermontes/mma-portal/internal/api"
	"github.com/javiermontes/mma-portal/internal/catalog"
	"github.com/javiermontes/mma-portal/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend emulates the slice of the catalog API the portal talks to.
type fakeBackend struct {
	fighters      []catalog.Fighter
	companies     []catalog.Company
	deleteBlocked bool
	deleted       []string
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		companies: []catalog.Company{
			{ID: 5, Slug: "wow-fc", Name: "WOW FC", Country: "España"},
		},
	}
	for i := 1; i <= 12; i++ {
		b.fighters = append(b.fighters, catalog.Fighter{
			ID:          i,
			Slug:        fmt.Sprintf("peleador-%d", i),
			FirstName:   fmt.Sprintf("Peleador%d", i),
			LastName:    "Apellido",
			WeightClass: "Peso Ligero",
		})
	}
	return b
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		switch {
		case creds.Email == "admin@portal.es" && creds.Password == "secreta":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-admin", "role": "admin"})
		case creds.Email == "editor@portal.es" && creds.Password == "secreta":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-editor", "role": "editor"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Credenciales inválidas"})
		}
	})

	mux.HandleFunc("GET /fighters", func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("search")
		var matched []catalog.Fighter
		for _, f := range b.fighters {
			if term == "" || strings.Contains(f.FirstName, term) {
				matched = append(matched, f)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"fighters": matched,
			"pagination": catalog.Pagination{
				TotalItems: len(matched), TotalPages: 1, CurrentPage: 1, Limit: 10,
			},
		})
	})

	mux.HandleFunc("GET /fighters/slug/{slug}", func(w http.ResponseWriter, r *http.Request) {
		for _, f := range b.fighters {
			if f.Slug == r.PathValue("slug") {
				json.NewEncoder(w).Encode(f)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("GET /companies", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"companies": b.companies,
			"pagination": catalog.Pagination{
				TotalItems: len(b.companies), TotalPages: 1, CurrentPage: 1, Limit: 10,
			},
		})
	})

	mux.HandleFunc("DELETE /companies/id/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-admin" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if b.deleteBlocked {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{
				"message": "No se puede eliminar una compañía con peleadores asociados",
			})
			return
		}
		b.deleted = append(b.deleted, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"events": []catalog.Event{}, "pagination": catalog.Pagination{}})
	})

	mux.HandleFunc("GET /news", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"news": []catalog.News{}, "pagination": catalog.Pagination{}})
	})

	return mux
}

// newTestPortal stands up the full portal against the fake backend and
// returns an HTTP client with a cookie jar, so logins persist across
// requests like a browser session.
func newTestPortal(t *testing.T, backend *fakeBackend) (*httptest.Server, *http.Client) {
	t.Helper()

	backendServer := httptest.NewServer(backend.handler(t))
	t.Cleanup(backendServer.Close)

	client := api.New(backendServer.URL, testLogger())
	sessions := scs.New()
	store := session.New(sessions, client, testLogger())
	client.SetTokenSource(store)
	client.SetUnauthorizedHook(store.Logout)

	manager := catalog.NewManager(client, testLogger())
	renderer, err := NewRenderer(backendServer.URL)
	require.NoError(t, err)

	handler := NewHandler(manager, store, sessions, testLogger())
	portal := httptest.NewServer(handler.RegisterRoutes(renderer))
	t.Cleanup(portal.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return portal, &http.Client{Jar: jar}
}

// noRedirect makes the client surface 3xx responses instead of following them.
func noRedirect(client *http.Client) *http.Client {
	copied := *client
	copied.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &copied
}

func doLogin(t *testing.T, portal *httptest.Server, client *http.Client, email, password string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(portal.URL+"/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestPublicPages(t *testing.T) {
	portal, client := newTestPortal(t, newFakeBackend())

	t.Run("Health", func(t *testing.T) {
		resp, err := client.Get(portal.URL + "/health")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("FightersList", func(t *testing.T) {
		resp, err := client.Get(portal.URL + "/peleadores")
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Peleador1 Apellido")
		assert.Contains(t, body, "Peleador12 Apellido")
	})

	t.Run("FightersSearch", func(t *testing.T) {
		resp, err := client.Get(portal.URL + "/peleadores?search=Peleador3")
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Contains(t, body, "Peleador3 Apellido")
		assert.NotContains(t, body, "Peleador5 Apellido")
	})

	t.Run("FighterDetail", func(t *testing.T) {
		resp, err := client.Get(portal.URL + "/peleadores/peleador-3")
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Peleador3 Apellido")
	})

	t.Run("UnknownSlugIs404", func(t *testing.T) {
		resp, err := client.Get(portal.URL + "/peleadores/no-existe")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("UnknownRouteIs404", func(t *testing.T) {
		resp, err := client.Get(portal.URL + "/no/existe")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPlaceholderImages(t *testing.T) {
	portal, client := newTestPortal(t, newFakeBackend())

	t.Run("ListFallsBackToPlaceholder", func(t *testing.T) {
		resp, err := client.Get(portal.URL + "/peleadores")
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Contains(t, body, `src="/images/fighters/avatar.svg"`)
	})

	t.Run("PlaceholdersAreServed", func(t *testing.T) {
		for _, path := range []string{
			"/images/fighters/avatar.svg",
			"/images/companies/avatar.svg",
			"/images/events/avatar.svg",
			"/images/news/fallback.svg",
		} {
			resp, err := client.Get(portal.URL + path)
			require.NoError(t, err)
			body := readBody(t, resp)
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
			assert.Contains(t, body, "<svg", path)
		}
	})
}

func TestAdminGuard(t *testing.T) {
	t.Run("AnonymousGoesToLogin", func(t *testing.T) {
		portal, client := newTestPortal(t, newFakeBackend())
		resp, err := noRedirect(client).Get(portal.URL + "/admin/dashboard")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	})

	t.Run("NonAdminRoleGoesHome", func(t *testing.T) {
		portal, client := newTestPortal(t, newFakeBackend())
		resp := doLogin(t, portal, client, "editor@portal.es", "secreta")
		resp.Body.Close()

		resp, err := noRedirect(client).Get(portal.URL + "/admin/dashboard")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
	})

	t.Run("AdminGetsThrough", func(t *testing.T) {
		portal, client := newTestPortal(t, newFakeBackend())
		resp := doLogin(t, portal, client, "admin@portal.es", "secreta")
		body := readBody(t, resp)
		assert.Contains(t, body, "Panel de administración")

		resp, err := client.Get(portal.URL + "/admin/dashboard")
		require.NoError(t, err)
		body = readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Gestión de Peleadores")
	})
}

func TestLogin(t *testing.T) {
	t.Run("BadCredentials", func(t *testing.T) {
		portal, client := newTestPortal(t, newFakeBackend())
		resp := doLogin(t, portal, client, "admin@portal.es", "incorrecta")
		body := readBody(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, body, "Credenciales inválidas")
		// the typed email survives the failed attempt
		assert.Contains(t, body, "admin@portal.es")
	})

	t.Run("AdminRedirectsToDashboard", func(t *testing.T) {
		portal, client := newTestPortal(t, newFakeBackend())
		resp, err := noRedirect(client).PostForm(portal.URL+"/login", url.Values{
			"email":    {"admin@portal.es"},
			"password": {"secreta"},
		})
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/admin/dashboard", resp.Header.Get("Location"))
	})

	t.Run("Logout", func(t *testing.T) {
		portal, client := newTestPortal(t, newFakeBackend())
		resp := doLogin(t, portal, client, "admin@portal.es", "secreta")
		resp.Body.Close()

		resp, err := client.PostForm(portal.URL+"/logout", nil)
		require.NoError(t, err)
		resp.Body.Close()

		resp, err = noRedirect(client).Get(portal.URL + "/admin/dashboard")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	})
}

func TestAdminCompanyDelete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		backend := newFakeBackend()
		portal, client := newTestPortal(t, backend)
		resp := doLogin(t, portal, client, "admin@portal.es", "secreta")
		resp.Body.Close()

		resp, err := client.PostForm(portal.URL+"/admin/companias/5/eliminar", nil)
		require.NoError(t, err)
		body := readBody(t, resp)

		assert.Equal(t, []string{"5"}, backend.deleted)
		assert.Contains(t, body, "Compañía eliminada con éxito")
	})

	t.Run("BlockedDeleteShowsBackendMessage", func(t *testing.T) {
		backend := newFakeBackend()
		backend.deleteBlocked = true
		portal, client := newTestPortal(t, backend)
		resp := doLogin(t, portal, client, "admin@portal.es", "secreta")
		resp.Body.Close()

		resp, err := client.PostForm(portal.URL+"/admin/companias/5/eliminar", nil)
		require.NoError(t, err)
		body := readBody(t, resp)

		// the list still shows the company and carries the backend's reason
		assert.Empty(t, backend.deleted)
		assert.Contains(t, body, "No se puede eliminar una compañía con peleadores asociados")
		assert.Contains(t, body, "WOW FC")
	})
}

func TestSessionExpiryMidBrowse(t *testing.T) {
	backendServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-viejo", "role": "admin"})
			return
		}
		// every authenticated call is rejected, as after a token expiry
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(backendServer.Close)

	client := api.New(backendServer.URL, testLogger())
	sessions := scs.New()
	store := session.New(sessions, client, testLogger())
	client.SetTokenSource(store)
	client.SetUnauthorizedHook(store.Logout)

	manager := catalog.NewManager(client, testLogger())
	renderer, err := NewRenderer(backendServer.URL)
	require.NoError(t, err)

	handler := NewHandler(manager, store, sessions, testLogger())
	portal := httptest.NewServer(handler.RegisterRoutes(renderer))
	t.Cleanup(portal.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{Jar: jar}

	resp := doLogin(t, portal, browser, "admin@portal.es", "secreta")
	resp.Body.Close()

	// the admin list hits the backend, gets 401 and redirects to login
	resp, err = noRedirect(browser).Get(portal.URL + "/admin/peleadores")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// the 401 hook dropped the session, so the guard now rejects too
	resp, err = noRedirect(browser).Get(portal.URL + "/admin/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}
