// Package session tracks who is logged in. The state is just two persisted
// strings, the backend's bearer token and the role it reported at login;
// there is no profile and no client-side expiry. A stale token is only
// discovered when the backend answers 401 to an authenticated request.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexedwards/scs/v2"

	"github.com/javiermontes/mma-portal/internal/api"
)

const (
	keyToken = "jwtToken"
	keyRole  = "userRole"

	// RoleAdmin gates the admin routes.
	RoleAdmin = "admin"
)

// User is the authenticated principal: role only.
type User struct {
	Role string
}

type Store struct {
	sessions *scs.SessionManager
	api      *api.Client
	log      *slog.Logger
}

func New(sessions *scs.SessionManager, client *api.Client, log *slog.Logger) *Store {
	return &Store{
		sessions: sessions,
		api:      client,
		log:      log,
	}
}

// Current derives the session state from whatever token and role are
// persisted. No network round-trip validates the token here.
func (s *Store) Current(ctx context.Context) *User {
	token := s.sessions.GetString(ctx, keyToken)
	role := s.sessions.GetString(ctx, keyRole)
	if token == "" || role == "" {
		return nil
	}
	return &User{Role: role}
}

// Token implements api.TokenSource.
func (s *Store) Token(ctx context.Context) string {
	return s.sessions.GetString(ctx, keyToken)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login authenticates against the backend and persists the returned token
// and role. On failure nothing is persisted and the backend's message is
// carried in the error.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	var resp loginResponse
	err := s.api.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login failed: backend returned no token")
	}

	s.sessions.Put(ctx, keyToken, resp.Token)
	s.sessions.Put(ctx, keyRole, resp.Role)
	s.log.Info("user logged in", "role", resp.Role)

	return &User{Role: resp.Role}, nil
}

// Anonymous returns a context carrying fresh, empty session data. Callers
// that live outside an HTTP request (the bot) must wrap their context with
// it once: the session manager panics on contexts without session data, and
// the store is the api client's token source on every request.
func (s *Store) Anonymous(ctx context.Context) context.Context {
	loaded, err := s.sessions.Load(ctx, "")
	if err != nil {
		s.log.Error("failed to initialize anonymous session context", "error", err)
		return ctx
	}
	return loaded
}

// SetFlash stores a one-shot notice shown on the next rendered page.
func (s *Store) SetFlash(ctx context.Context, msg string) {
	s.sessions.Put(ctx, "flash", msg)
}

// Flash pops the pending notice, if any.
func (s *Store) Flash(ctx context.Context) string {
	return s.sessions.PopString(ctx, "flash")
}

// Logout clears both persisted values. Clearing is idempotent, so the
// explicit logout and the client's global 401 hook can both call it without
// coordination.
func (s *Store) Logout(ctx context.Context) {
	s.sessions.Remove(ctx, keyToken)
	s.sessions.Remove(ctx, keyRole)
}
