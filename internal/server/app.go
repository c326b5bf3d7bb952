// Package server wires storage, services and transports together and runs
// them until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/httpapi"
	"github.com/dmitrijs2005/gophaccount/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccount/internal/server/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/gophaccount/internal/server/grpc"
)

const (
	serviceName         = "gophaccount"
	sessionPurgeEvery   = 10 * time.Minute
	healthCheckInterval = 15 * time.Second
	shutdownTimeout     = 10 * time.Second
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	backend  *Backend
	services httpapi.Services
	registry *prometheus.Registry
	api      *httpapi.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, err
	}

	b, err := OpenBackend(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	if err := b.Migrate(ctx); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mx := metrics.New(reg)

	mailer, err := NewMailer(c, logger)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}

	exporter, err := NewExporter(ctx, c)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("archive exporter: %w", err)
	}

	svc, err := NewServices(b, c, logger, mx, mailer, exporter)
	if err != nil {
		_ = b.Close()
		return nil, err
	}

	return &App{config: c, logger: logger, backend: b, services: svc, registry: reg}, nil
}

func (app *App) handler() http.Handler {
	app.api = httpapi.NewHandler(app.services, app.logger, app.config.CookieSecure)
	return httpapi.Router(app.api, httpapi.RouterOptions{
		AllowedOrigins: app.config.AllowedOrigins,
		Ready:          app.backend.Pinger.PingContext,
		Gatherer:       app.registry,
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "http server listening", "addr", app.config.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}

	// reset mails still in flight
	app.api.Wait()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.HealthAddrGRPC, app.logger, app.backend.Pinger, healthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a server fails, then shuts down.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	shutdownTracing, err := telemetry.Init(ctx, serviceName, app.config.OTLPEndpoint)
	if err != nil {
		return errors.Join(fmt.Errorf("telemetry: %w", err), app.backend.Close())
	}

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.services.Sessions.RunPurger(ctx, sessionPurgeEvery)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "Stopping app...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(shutdownTracing(shutdownCtx), app.backend.Close())
}
