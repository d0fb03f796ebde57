// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sim-activation-portal/internal/config"
	"sim-activation-portal/internal/domain/ports/adapter"
	"sim-activation-portal/internal/infra/adapters/inventory"
	pg "sim-activation-portal/internal/infra/db/postgres"
	"sim-activation-portal/internal/infra/logging"
	"sim-activation-portal/internal/infra/metrics"
	red "sim-activation-portal/internal/infra/redis"
	"sim-activation-portal/internal/infra/sched"
	"sim-activation-portal/internal/infra/web"
	"sim-activation-portal/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no redaction)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if cfg.Database.Migrate {
		if err := pg.Migrate(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("migrations")
		}
		logger.Info().Msg("migrations applied")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- SIM inventory: cache -> throttle -> upstream ----
	var upstream adapter.SimInventory
	switch {
	case cfg.Sim.InventoryURL == "" && cfg.Runtime.Dev:
		logger.Warn().Msg("sim.inventory_url not set; every SIM reports unavailable")
		upstream = inventory.Noop{}
	default:
		base := cfg.Sim.InventoryURL
		if base == "" {
			base = inventory.DefaultBaseURL
		}
		httpInv, err := inventory.NewHTTPInventory(base, cfg.Sim.Timeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("sim inventory")
		}
		upstream = httpInv
	}
	throttled := red.NewThrottledInventory(upstream, red.NewRateLimiter(redisClient), cfg.Sim.RateLimit, cfg.Sim.RateWindow)
	simInventory := red.NewSimInventoryCache(throttled, redisClient, cfg.Sim.CacheTTL, logger)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	offerRepo := pg.NewOfferRepoCacheDecorator(pg.NewPostgresOfferRepo(pool), redisClient, cfg.Redis.TTL)

	// ---- Use cases ----
	simUC := usecase.NewSimUseCase(simInventory, logger, cfg.Runtime.Dev)
	offerUC := usecase.NewOfferUseCase(offerRepo, txManager, logger)
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	activationUC := usecase.NewActivationUseCase(simUC, offerUC, userRepo, cfg.HTTP.OnboardingPath, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Session)
	srv := web.NewServer(activationUC, offerUC, userUC, auth, cfg.HTTP.RequestTimeout, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Pool stats worker ----
	if cfg.Metrics.Enabled {
		worker := sched.NewPoolStatsWorker(cfg.Metrics.PoolInterval, sched.PgxPoolStats(pool), logger)
		go func() { _ = worker.Run(ctx) }()
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
