package main // Entry point package

import (
	"context"   // shutdown deadline and consumer lifetime
	"errors"    // distinguishes a clean server close
	"net/http"  // http.ErrServerClosed
	"os"        // exit codes
	"os/signal" // SIGINT/SIGTERM handling
	"syscall"   // SIGTERM
	"time"      // shutdown timeout

	"github.com/rs/zerolog" // structured logging
	"gorm.io/gorm/logger"   // gorm log level

	"github.com/iliyamo/revalidation-api/internal/billing"    // webhook processing
	"github.com/iliyamo/revalidation-api/internal/config"     // Internal config loader
	"github.com/iliyamo/revalidation-api/internal/database"   // MySQL and gorm pools
	"github.com/iliyamo/revalidation-api/internal/logging"    // logger construction
	"github.com/iliyamo/revalidation-api/internal/middleware" // rate limiter
	"github.com/iliyamo/revalidation-api/internal/queue"      // subscription consumer
	"github.com/iliyamo/revalidation-api/internal/repository" // data access
	"github.com/iliyamo/revalidation-api/internal/router"     // Internal router setup
	"github.com/iliyamo/revalidation-api/internal/service"    // RabbitMQ publisher
)

func main() {
	cfg := config.Load()                      // Load environment config
	log := logging.New(cfg.Env, cfg.LogLevel) // Install the global logger

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	gormLevel := logger.Warn
	if cfg.IsProduction() {
		gormLevel = logger.Error
	}
	gdb, err := database.OpenGorm(db, gormLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("gorm setup failed")
	}

	rdb, err := config.NewRedisClient(context.Background()) // nil disables rate limiting and webhook dedupe
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; rate limiting and webhook dedupe disabled")
	} else {
		defer rdb.Close()
	}

	// Repositories
	writer := repository.NewFallbackWriter(repository.NewGormUserStore(gdb), repository.NewRawUserStore(db))
	users := repository.NewUserRepo(db, writer)

	var processor *billing.Processor
	if cfg.StripeWebhookSecret != "" {
		processor = &billing.Processor{
			Secret:    cfg.StripeWebhookSecret,
			Users:     users,
			Writer:    writer,
			Dedupe:    billing.NewDeduper(rdb),
			Publisher: service.NewQueuePublisher(cfg.AMQPURL),
		}
	} else {
		log.Warn().Msg("STRIPE_WEBHOOK_SECRET not set; billing webhook disabled")
	}
	h := router.NewHandlers(cfg, db, users, processor)

	e := router.NewEcho(log, cfg.IsProduction())
	router.RegisterRoutes(e, db, h)
	router.RegisterAPI(e, h, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The consumer reconnects on its own until ctx is cancelled.
	go func() {
		consumerCtx := log.With().Str("component", "consumer").Logger().WithContext(ctx)
		if err := queue.StartSubscriptionConsumer(consumerCtx, cfg.AMQPURL, queue.LogSubscriptionChange); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("subscription consumer stopped")
		}
	}()

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	shutdown(e.Shutdown, log)
}

func shutdown(fn func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
