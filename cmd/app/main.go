package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/namsral/flag"

	"github.com/javiermontes/mma-portal/config"
	"github.com/javiermontes/mma-portal/internal/app"
)

var (
	flConfig = flag.String("config", "config.toml", "path to TOML configuration file")
	flDebug  = flag.Bool("debug", false, "enable debug mode")
	lg       *slog.Logger
)

func main() {
	// a missing .env is fine, values then come from the environment itself
	_ = godotenv.Load()
	flag.Parse()

	lg = newLogger(*flDebug)

	cfg, err := config.Load(*flConfig)
	if err != nil {
		exitOnError(err)
	}

	if cfg.Sentry.DSN != "" {
		err = sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN})
		if err != nil {
			exitOnError(err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	service, err := app.New(*cfg, lg)
	if err != nil {
		exitOnError(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := service.Run(ctx)
		if err != nil {
			lg.Error("service run failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	if service.Bot != nil {
		go func() {
			if err := service.Bot.Run(ctx); err != nil && err != context.Canceled {
				lg.Error("telegram bot stopped", "error", err)
			}
		}()
	}

	<-quit
	lg.Info("service stopping")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	err = service.GracefulShutdown(shutdownCtx)
	if err != nil {
		lg.Error("service graceful shutdown failed", "error", err)
	}
}

func newLogger(debug bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func exitOnError(err error) {
	if err != nil {
		lg.Error("app init failed", "error", err)
		os.Exit(1)
	}
}
