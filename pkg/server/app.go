package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"IPOWatch/internal/usecase"
	"IPOWatch/pkg/config"
	xhttp "IPOWatch/pkg/http"
	applogger "IPOWatch/pkg/logger"
)

// App encapsulates the application lifecycle for both CLI modes.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	pipeline   *usecase.Pipeline
	scheduler  *usecase.Scheduler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	scheduler *usecase.Scheduler,
	httpServer *xhttp.Server,
) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	return &App{
		cfg:        cfg,
		log:        l,
		pipeline:   pipeline,
		scheduler:  scheduler,
		httpServer: httpServer,
	}
}

// RunOnce executes a single pass.
func (a *App) RunOnce(ctx context.Context) (*usecase.PassResult, error) {
	return a.pipeline.RunPass(ctx)
}

// RunSchedule runs passes until SIGINT or SIGTERM. A pass already in progress
// completes before the scheduler returns.
func (a *App) RunSchedule(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Server.Enabled && a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			return fmt.Errorf("start status server: %w", err)
		}
		defer a.stopServer()
	}

	if err := a.scheduler.Run(ctx); err != nil {
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}

func (a *App) stopServer() {
	// The schedule context is already done here.
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
}
