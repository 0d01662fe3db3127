package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/templui/sitefixtures/internal/app"
	"github.com/templui/sitefixtures/internal/config"
	"github.com/templui/sitefixtures/internal/logger"
)

func loadConfig() *config.Config {
	cfg := config.Load()
	logger.Init(logger.Options{
		Development: cfg.IsDevelopment(),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		SentryDSN:   cfg.SentryDSN,
	})
	return cfg
}

func setup() (*app.App, error) {
	return app.New(loadConfig())
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
