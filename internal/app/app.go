package app

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/grocerylist"
	"github.com/MinasAbeer/grocery-list-service/internal/domain/product"
	"github.com/MinasAbeer/grocery-list-service/internal/httpapi"
	"github.com/MinasAbeer/grocery-list-service/internal/sink"
	"github.com/MinasAbeer/grocery-list-service/internal/storage/memory"
	"github.com/MinasAbeer/grocery-list-service/internal/storage/postgres"
	"github.com/MinasAbeer/grocery-list-service/pkg/health"
	"github.com/MinasAbeer/grocery-list-service/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	var (
		products product.Repository
		lists    grocerylist.ListRepository
		items    grocerylist.ItemRepository
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}

		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})

		products = postgres.NewProductRepository(pool)
		lists = postgres.NewListRepository(pool)
		items = postgres.NewItemRepository(pool)
	} else {
		lg.Warn("No database URL configured, using in-memory stores")
		products = memory.NewProductStore()
		lists = memory.NewListStore()
		items = memory.NewItemStore()
	}

	session := grocerylist.NewSession(
		grocerylist.SessionConfig{ExportFilename: cfg.Export.Filename},
		items, products,
		sink.NewFileSink(cfg.Export.Dir),
	)
	if cfg.Session.ListID != "" {
		l, err := lists.GetByID(ctx, cfg.Session.ListID)
		if err != nil {
			return errors.Wrapf(err, "load default list %q", cfg.Session.ListID)
		}
		if err := session.SetList(ctx, *l); err != nil {
			return errors.Wrap(err, "load default session")
		}
	}

	api := httpapi.NewServer(products, lists, session)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", api.Routes()))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.Middleware(chimw.RequestID),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Instrument("grocery-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
