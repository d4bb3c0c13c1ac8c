// Package server wires the application together: database, repositories,
// services, the model client, the HTTP API and the ops gRPC listener. It
// also owns signal handling and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/donna/internal/logging"
	"github.com/dmitrijs2005/donna/internal/server/config"
	"github.com/dmitrijs2005/donna/internal/server/httpapi"
	"github.com/dmitrijs2005/donna/internal/server/llm"
	"github.com/dmitrijs2005/donna/internal/server/ratelimit"
	"github.com/dmitrijs2005/donna/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/donna/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/donna/internal/server/grpc"
)

const (
	shutdownTimeout = 15 * time.Second
	probeInterval   = 10 * time.Second
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	httpLog *log.Logger
	db      *sql.DB
	redis   *redis.Client
	handler http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	model := llm.NewClient(llm.Options{
		URL:         c.ModelAPIURL,
		APIKey:      c.ModelAPIKey,
		Model:       c.ModelName,
		Temperature: c.ModelTemperature,
		MaxTokens:   c.ModelMaxTokens,
		Timeout:     c.ModelTimeout,
	}, logger)

	app := &App{
		config:  c,
		logger:  logger,
		httpLog: slog.NewLogLogger(logger.Slog().With("module", "http").Handler(), slog.LevelError),
		db:      db,
	}

	limiter := app.newLimiter(ctx)

	api := httpapi.NewServer(httpapi.Deps{
		Users:       services.NewUserService(db, rm, c),
		Tasks:       services.NewTaskService(db, rm),
		Events:      services.NewEventService(db, rm),
		Chat:        services.NewChatService(db, rm, model, c.HistoryTurns, logger),
		Limiter:     limiter,
		Logger:      logger,
		CORSOrigins: c.CORSAllowedOrigins,
	})
	app.handler = api.Routes()

	return app, nil
}

// newLimiter prefers Redis so limits hold across replicas. An unreachable
// Redis at startup falls back to per-process limits.
func (app *App) newLimiter(ctx context.Context) ratelimit.Limiter {
	cfg := ratelimit.Config{
		RequestsPerMinute: app.config.ChatRateLimitPerMinute,
		BurstSize:         app.config.ChatRateLimitBurst,
	}

	if app.config.RedisAddr == "" {
		return ratelimit.NewLocalLimiter(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
		DB:       app.config.RedisDB,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		app.logger.Warn(ctx, "redis unavailable, using in-process rate limits", "addr", app.config.RedisAddr, "error", err)
		_ = client.Close()
		return ratelimit.NewLocalLimiter(cfg)
	}

	app.redis = client
	return ratelimit.NewRedisLimiter(client, cfg)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.handler, app.config.ModelTimeout, app.httpLog)

	go func() {
		<-ctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(sctx, "HTTP shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.db.PingContext, probeInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or ctx is cancelled, then
// stops both listeners and releases connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(context.Background(), "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
}
