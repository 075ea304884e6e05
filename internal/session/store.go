package session

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// OpenStore opens the sqlite-backed session manager. The sessions table is
// created by the embedded goose migration, so a fresh deployment needs no
// manual schema step.
func OpenStore(path string, lifetime time.Duration) (*scs.SessionManager, *sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping session database: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run session migrations: %w", err)
	}

	sessions := scs.New()
	sessions.Store = sqlite3store.New(db)
	sessions.Lifetime = lifetime
	sessions.Cookie.Name = "mma_portal_session"
	sessions.Cookie.HttpOnly = true

	return sessions, db, nil
}
