package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for any 401 response, after the
	// unauthorized hook has fired.
	ErrUnauthorized = errors.New("no autorizado")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("no encontrado")
)

// StatusError is any other non-2xx response. Message carries the backend's
// own error message when the body contained one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend respondió %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend respondió %d", e.Status)
}

// Unwrap maps the auth and not-found statuses onto their sentinels, so a 401
// that carried a body message still matches errors.Is(err, ErrUnauthorized).
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Message extracts a user-facing message from err: the backend's message for
// StatusError, a fixed text for the sentinel errors, and fallback for
// everything else (network failures included).
func Message(err error, fallback string) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr) && statusErr.Message != "":
		return statusErr.Message
	case errors.Is(err, ErrUnauthorized):
		return "Sesión expirada o no autorizada."
	case errors.Is(err, ErrNotFound):
		return "No encontrado."
	}
	return fallback
}

// backend error bodies come as {"message": "..."} or {"error": "..."}
func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
