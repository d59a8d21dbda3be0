package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cleanviz/internal/charts"
	"cleanviz/internal/config"
	apierrors "cleanviz/internal/errors"
	"cleanviz/internal/infrastructure"
	customMiddleware "cleanviz/internal/middleware"
	"cleanviz/internal/services"
	"cleanviz/internal/session"
	handlers "cleanviz/internal/transport/http"
	"cleanviz/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Store         *session.Store
	Workspace     *services.WorkspaceService
	HealthService *services.HealthService
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication wires the application from cfg. The caller owns logger
// setup so tests can pass a discarding logger.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	app.initializeServices()
	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	app.createServer()

	return app, nil
}

// initializeServices builds the session store and the services on top of it
func (a *Application) initializeServices() {
	a.Store = session.NewStore(a.Config.Session.TTL, a.Config.Session.CleanupInterval, a.Config.Session.MaxSessions)

	renderer := charts.NewRenderer(charts.Options{
		Width:  a.Config.Charts.Width,
		Height: a.Config.Charts.Height,
	})

	a.Workspace = services.NewWorkspaceService(a.Store, renderer, services.WorkspaceConfig{
		PreviewRows:   a.Config.Upload.PreviewRows,
		BundleWorkers: a.Config.Charts.BundleWorkers,
	}, a.Metrics, a.Logger)

	a.HealthService = services.NewHealthServiceWithBuildInfo(
		contracts.Version,
		config.RepoURL,
		contracts.BuildTime,
		contracts.GitCommit,
		a.Workspace,
		a.Logger,
	)
}

// setupRouter configures the HTTP router. Ordering: RequestID → RealIP →
// OTel → Logger → Recoverer → headers → CORS → rate limit → Timeout → body limit.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	eh := a.ErrorHandler

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// set before any Mount so subrouters inherit them
	r.NotFound(eh.NotFound)
	r.MethodNotAllowed(eh.MethodNotAllowed)

	htmlHandler, err := handlers.NewHTMLHandler(a.Workspace, a.Logger, eh)
	if err != nil {
		return err
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(eh))

		secureHeaders := customMiddleware.DefaultSecureHeaders()
		secureHeaders.DevMode = a.Config.Logging.Development
		r.Use(secureHeaders.Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, eh, a.Logger).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.BodyLimit(a.Config.Upload.MaxBytes))

		a.setupAPIRoutes(r)
		htmlHandler.RegisterRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

// setupAPIRoutes mounts the JSON API under /api
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		sessionsHandler := handlers.NewSessionsHandler(a.Workspace, customMiddleware.NewValidator(), a.Logger, a.ErrorHandler)
		r.Route("/sessions", func(r chi.Router) {
			r.Use(customMiddleware.ContentTypeValidator(a.ErrorHandler, "application/json", "multipart/form-data"))
			r.Mount("/", sessionsHandler.Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "Location", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// listener fails, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		a.Logger.InfoContext(ctx, "Server listening",
			slog.String("address", a.Server.Addr),
			slog.String("level", a.Config.Logging.Level))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			return errors.Join(fmt.Errorf("server error: %w", err), a.Stop(context.Background()))
		}
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	}

	return a.Stop(context.Background())
}

// Stop drains in-flight requests, drops every session and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.Store.Flush()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}
