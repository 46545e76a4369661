package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shaibs3/studyhub/internal/config"
	"github.com/shaibs3/studyhub/internal/events"
	"github.com/shaibs3/studyhub/internal/handlers"
	"github.com/shaibs3/studyhub/internal/router"
	"github.com/shaibs3/studyhub/internal/service"
	"github.com/shaibs3/studyhub/internal/session"
	"github.com/shaibs3/studyhub/internal/storage"
	"github.com/shaibs3/studyhub/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// App represents the main application
type App struct {
	config    *config.Config
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
	store     storage.Provider
	publisher events.Publisher
	sessions  session.Store
	redis     *redis.Client
	server    *http.Server

	stopCleanup context.CancelFunc
}

func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	// Initialize telemetry
	tel, err := telemetry.NewTelemetry(logger)
	if err != nil {
		return nil, err
	}

	// Use the factory to create the storage provider; an empty config selects memory
	factory := storage.NewDbProviderFactory(logger, tel)
	store, err := factory.CreateProvider(cfg.DBProviderConfig)
	if err != nil {
		return nil, err
	}

	app := &App{
		config:    cfg,
		logger:    logger,
		telemetry: tel,
		store:     store,
	}

	if err := app.initSessionStore(); err != nil {
		_ = store.Close()
		return nil, err
	}
	sessions := session.NewManager(app.sessions, cfg.SessionSecret, cfg.SessionTTL)

	app.publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)

	authService := service.NewAuthService(store, sessions, app.publisher, logger)
	resourceService := service.NewResourceService(store, app.publisher, logger)
	taskService := service.NewTaskService(store, app.publisher, logger)

	// Create handlers
	handlerList := []router.Handler{
		handlers.NewHealthHandler(store),
		handlers.NewAuthHandler(authService, handlers.CookieConfig{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionCookieSecure,
			MaxAge: cfg.SessionTTL,
		}),
		handlers.NewResourceHandler(resourceService),
		handlers.NewStatusHandler(resourceService),
		handlers.NewTaskHandler(taskService),
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RPSLimit), cfg.RPSBurst)
	appRouter := router.NewRouter(limiter, tel, logger, handlerList,
		router.WithSessions(sessions, cfg.SessionCookieName),
		router.WithCORSOrigin(cfg.CORSAllowedOrigin),
	)
	app.server = appRouter.CreateServer(":" + cfg.Port)

	return app, nil
}

func (app *App) initSessionStore() error {
	switch app.config.SessionStore {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return fmt.Errorf("failed to connect to redis at %s: %w", app.config.RedisAddr, err)
		}
		app.redis = rdb
		app.sessions = session.NewRedisStore(rdb)
		app.logger.Info("using redis session store", zap.String("addr", app.config.RedisAddr))
	case "memory", "":
		app.sessions = session.NewMemoryStore(app.logger)
	default:
		return fmt.Errorf("unsupported session store: %s", app.config.SessionStore)
	}
	return nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *App) Handler() http.Handler {
	return app.server.Handler
}

// Start starts the application server
func (app *App) start() error {
	app.logger.Info("starting server", zap.String("port", app.config.Port))

	if mem, ok := app.sessions.(*session.MemoryStore); ok {
		ctx, cancel := context.WithCancel(context.Background())
		app.stopCleanup = cancel
		go mem.StartCleanup(ctx, session.DefaultCleanupInterval)
	}

	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the application
func (app *App) stop() error {
	app.logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	app.close(shutdownCtx)
	app.logger.Info("server exited gracefully")
	return nil
}

// close releases everything NewApp acquired besides the server.
func (app *App) close(ctx context.Context) {
	if app.stopCleanup != nil {
		app.stopCleanup()
	}
	if err := app.publisher.Close(); err != nil {
		app.logger.Error("failed to close event publisher", zap.Error(err))
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("failed to close redis client", zap.Error(err))
		}
	}
	if err := app.store.Close(); err != nil {
		app.logger.Error("failed to close storage provider", zap.Error(err))
	}
	_ = app.telemetry.Shutdown(ctx)
}

// Run starts the application and waits for shutdown signals
func (app *App) Run() error {
	// Start the server
	if err := app.start(); err != nil {
		return err
	}

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wait for shutdown signal
	<-ctx.Done()

	// Stop the application
	return app.stop()
}
