package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-tracker/internal/config"
	"github.com/iliyamo/movie-tracker/internal/database"
	"github.com/iliyamo/movie-tracker/internal/handler"
	"github.com/iliyamo/movie-tracker/internal/metrics"
	"github.com/iliyamo/movie-tracker/internal/middleware"
	"github.com/iliyamo/movie-tracker/internal/moviedb"
	"github.com/iliyamo/movie-tracker/internal/repository"
	"github.com/iliyamo/movie-tracker/internal/router"
	"github.com/iliyamo/movie-tracker/internal/service"
	"github.com/iliyamo/movie-tracker/internal/view"
	"github.com/iliyamo/movie-tracker/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.Init(cfg.IsDevelopment(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("connect mysql")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	m := metrics.NewManager()
	catalog := moviedb.NewClient(cfg.MovieDBAPIKey,
		moviedb.WithEndpoint(cfg.MovieDBEndpoint),
		moviedb.WithImageBase(cfg.MovieDBImageBase),
		moviedb.WithTimeout(cfg.MovieDBTimeout),
		moviedb.WithObserver(m.ObserveUpstream),
	)
	events := service.NewActivityPublisher(cfg.AMQPURL, cfg.EventsEnabled)

	deps := map[string]handler.Pinger{"mysql": db}
	rlCfg := config.LoadRateLimitConfig()
	var limit echo.MiddlewareFunc
	if rlCfg.Enabled {
		rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		} else {
			defer rdb.Close()
			limit = middleware.RateLimit(rlCfg, middleware.NewRedisBucket(rdb, rlCfg))
			deps["redis"] = handler.PingFunc(redisPing(rdb))
		}
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("parse templates")
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(m))

	h := handler.NewMovieHandler(repository.NewMovieRepo(db), catalog, events, m, cfg.SecretToken, cfg.FormTokenTTL)
	router.RegisterRoutes(e, m, deps)
	router.RegisterMovies(e, h, limit, rlCfg.Scope)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Bool("events", events.Enabled()).Msg("starting HTTP server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}

func redisPing(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}
