package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-tracker/internal/config"
	"github.com/iliyamo/movie-tracker/internal/queue"
	"github.com/iliyamo/movie-tracker/pkg/logger"
)

func main() {
	logDir := flag.String("log-dir", "logs", "directory receiving activity.log")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(config.IsDevelopmentEnv(config.AppEnv()), config.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", queue.ActivityQueueName).Str("log_dir", *logDir).Msg("starting activity consumer")
	if err := queue.StartActivityConsumer(ctx, config.AMQPURL(), *logDir); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("activity consumer stopped")
	}
	log.Info().Msg("activity consumer stopped")
}
