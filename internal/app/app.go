package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mktintel/internal/config"
	apierrors "mktintel/internal/errors"
	"mktintel/internal/infrastructure"
	"mktintel/internal/insights"
	customMiddleware "mktintel/internal/middleware"
	"mktintel/internal/services"
	handlers "mktintel/internal/transport/http"
	ws "mktintel/internal/websocket"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Application holds every long-lived component of the dashboard server.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Router chi.Router
	Server *http.Server

	Dashboard *services.DashboardService
	Insights  *services.InsightService
	Health    *services.HealthService
	Hub       *ws.Hub
}

// NewApplication loads configuration and wires all services and routes.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() {
	a.Dashboard = services.NewDashboardService(a.Config, a.Logger)
	a.Health = services.NewHealthService(Version, a.Config, a.Logger)

	var provider insights.Provider
	if client := insights.NewGeminiClient(a.Config.Insights, a.Logger); client.Enabled() {
		provider = client
	} else {
		a.Logger.Info("llm provider disabled, using rule-based insights only",
			slog.String("api_key_env", a.Config.Insights.APIKeyEnv))
	}
	a.Insights = services.NewInsightService(insights.NewEngine(a.Logger), provider, a.Dashboard, a.Logger)

	a.Hub = ws.NewHub(a.Logger)

	// Replaced source files push a refresh hint to connected dashboards.
	a.Dashboard.OnRefresh(func() {
		a.Hub.BroadcastDataUpdate("dataset", []string{"combined", "marketing", "summary", "insights"})
	})
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that does not wrap the ResponseWriter, so the
	// websocket upgrade still works.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.HandleFunc("/ws", ws.ServeWS(a.Hub, a.Logger))

	// Prometheus metrics endpoint, outside the middleware group.
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger)

	r.Route("/api", func(r chi.Router) {
		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		r.Mount("/health", healthHandler.Routes())

		dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, a.Logger, errorHandler)
		r.Mount("/dashboard", dashboardHandler.Routes())

		insightsHandler := handlers.NewInsightsHandler(a.Insights, a.Logger, errorHandler)
		r.Mount("/insights", insightsHandler.Routes())
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server and the websocket hub until ctx is cancelled.
func (a *Application) Start(ctx context.Context) error {
	a.Hub.Start()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return a.Stop(context.Background())
	}
}

// Stop shuts the server down gracefully within the configured timeout.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Hub.BroadcastStatus("shutdown", "server is shutting down")
	// Give the hub a moment to flush the goodbye message.
	time.Sleep(50 * time.Millisecond)
	a.Hub.Stop()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.Logger.Info("shutdown complete")
	return nil
}

// Run starts the application and blocks until an interrupt signal arrives.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Start(ctx)
}
