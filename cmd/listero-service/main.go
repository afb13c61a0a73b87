package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/labanca/listero/internal/api"
	"github.com/labanca/listero/internal/jobs"
	"github.com/labanca/listero/internal/publisher"
	"github.com/labanca/listero/internal/rate"
	internalsecrets "github.com/labanca/listero/internal/secrets"
	"github.com/labanca/listero/internal/store"
	"github.com/labanca/listero/internal/ticket"
	"github.com/labanca/listero/pkg/config"
	"github.com/labanca/listero/pkg/logger"
	"github.com/labanca/listero/pkg/secrets"
	"github.com/labanca/listero/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [listero-service]...")

	// --- Datastore credentials (AWS Secrets Manager outside dev) ---
	if cfg.Env != "dev" {
		awsProvider, err := secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}

		credsCache := secrets.NewCache[internalsecrets.DatastoreCredentials](cfg.CacheTTL)
		stopCleaner := make(chan struct{})
		defer close(stopCleaner)
		go credsCache.StartCleaner(cfg.CleanupFreq, stopCleaner)

		resolver := internalsecrets.NewResolver(logger.L(), cfg.Env, awsProvider, credsCache)
		creds, err := resolver.Resolve(ctx)
		if err != nil {
			logg.Fatalw("failed to resolve datastore credentials", "error", err)
		}
		cfg.DatabaseURL = creds.DatabaseURL
		cfg.RedisPass = creds.RedisPass
	}

	logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))

	// --- Connect to NATS ---
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logg.Fatalw("failed to connect to NATS", "error", err)
	}
	defer nc.Close()

	// --- Publisher ---
	pub, err := publisher.New(nc, logger.L(), cfg.OutboundSubject, cfg.ServiceName)
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err)
	}

	// --- Rate limiter (per-listero submit throttle) ---
	rateMgr := rate.NewManager(rate.Config{
		SubmitsPerSecond: cfg.SubmitsPerSecond,
		Burst:            cfg.SubmitBurst,
	})

	// --- Store (Redis + Postgres hybrid) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.DatabaseURL, store.PGPoolConfig{
		MaxConns:          int32(cfg.PGMaxConns),
		MinConns:          int32(cfg.PGMinConns),
		MaxConnLifetime:   cfg.PGMaxConnLifetime,
		MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
		HealthCheckPeriod: cfg.PGHealthCheckPeriod,
	}, cfg.Location, logger.L())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}
	defer st.Close()

	// --- Ticket service (parse, validate, dedupe, persist) ---
	ticketSvc := ticket.NewService(logger.L(), st, pub, cfg.CapacityTTL)

	// --- Daily usage rollup job ---
	refresher := jobs.NewUsageRefresher(logger.L(), st.PG, pub, cfg.UsageRefreshInterval)
	go refresher.Start(ctx)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	ticketHandler := api.NewTicketHandler(logger.L(), ticketSvc, rateMgr)
	api.RegisterRoutes(app, nc, st, ticketHandler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	// --- Main process stays alive until interrupted ---
	logg.Infow("[listero-service] running",
		"nats", cfg.NATSURL,
		"env", cfg.Env,
		"timezone", cfg.Timezone,
		"usage_refresh_interval", cfg.UsageRefreshInterval)

	<-ctx.Done()
	logg.Info("shutting down [listero-service]...")

	refresher.Stop()
	if err := app.Shutdown(); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
}
