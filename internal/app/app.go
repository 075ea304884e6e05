package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"

	"github.com/javiermontes/mma-portal/config"
	"github.com/javiermontes/mma-portal/internal/api"
	"github.com/javiermontes/mma-portal/internal/bot"
	"github.com/javiermontes/mma-portal/internal/catalog"
	"github.com/javiermontes/mma-portal/internal/session"
	"github.com/javiermontes/mma-portal/internal/web"
)

type App struct {
	Echo   *echo.Echo
	Bot    *bot.Bot
	Logger *slog.Logger
	Config config.Config

	sessionDB *sql.DB
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	client := api.New(cfg.Backend.BaseURL, logger, api.WithTimeout(cfg.BackendTimeout()))

	sessionManager, sessionDB, err := session.OpenStore(cfg.Session.Path, cfg.SessionLifetime())
	if err != nil {
		return nil, fmt.Errorf("unable to open session store: %w", err)
	}

	store := session.New(sessionManager, client, logger)
	client.SetTokenSource(store)
	client.SetUnauthorizedHook(store.Logout)

	manager := catalog.NewManager(client, logger)

	renderer, err := web.NewRenderer(cfg.Backend.MediaOrigin)
	if err != nil {
		sessionDB.Close()
		return nil, fmt.Errorf("unable to parse templates: %w", err)
	}

	handler := web.NewHandler(manager, store, sessionManager, logger)
	e := handler.RegisterRoutes(renderer)
	if cfg.Sentry.DSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	var tgBot *bot.Bot
	if cfg.Telegram.Token != "" {
		tgBot, err = bot.New(cfg.Telegram.Token, manager, store, logger)
		if err != nil {
			sessionDB.Close()
			return nil, fmt.Errorf("unable to start telegram bot: %w", err)
		}
	}

	return &App{
		Echo:      e,
		Bot:       tgBot,
		Logger:    logger,
		Config:    cfg,
		sessionDB: sessionDB,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.Config.App.Host, a.Config.App.Port)
	return a.Echo.Start(addr)
}

func (a *App) GracefulShutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if closeErr := a.sessionDB.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
