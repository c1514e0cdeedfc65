package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/needlink/needlink-backend/api/routes"
	"github.com/needlink/needlink-backend/internal/accounts"
	"github.com/needlink/needlink-backend/internal/authz"
	"github.com/needlink/needlink-backend/internal/goods"
	"github.com/needlink/needlink-backend/internal/memberships"
	"github.com/needlink/needlink-backend/internal/needs"
	"github.com/needlink/needlink-backend/internal/pois"
	"github.com/needlink/needlink-backend/internal/shipments"
	"github.com/needlink/needlink-backend/internal/users"
	"github.com/needlink/needlink-backend/pkg/auth/session"
	"github.com/needlink/needlink-backend/pkg/config"
	"github.com/needlink/needlink-backend/pkg/db"
	"github.com/needlink/needlink-backend/pkg/logger"
	"github.com/needlink/needlink-backend/pkg/metrics"
	"github.com/needlink/needlink-backend/pkg/migrate"
	"github.com/needlink/needlink-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	admissionMetrics := metrics.NewAdmissionMetrics(registry)

	conn := dbClient.DB()
	resolver, err := memberships.NewResolver(memberships.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create membership resolver", err)
		os.Exit(1)
	}

	accountsService, err := accounts.NewService(users.NewRepository(conn), sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	poisService, err := pois.NewService(pois.NewRepository(conn), resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create pois service", err)
		os.Exit(1)
	}

	goodsPolicy, err := authz.GoodsPolicy(resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create goods policy", err)
		os.Exit(1)
	}
	goodsService, err := goods.NewService(goods.NewRepository(conn), goodsPolicy)
	if err != nil {
		logg.Error(context.Background(), "failed to create goods service", err)
		os.Exit(1)
	}

	needsPolicy, err := authz.NeedsPolicy(resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create needs policy", err)
		os.Exit(1)
	}
	needsRepo := needs.NewRepository(conn)
	needsService, err := needs.NewService(needsRepo, goods.NewRepository(conn), needsPolicy, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create needs service", err)
		os.Exit(1)
	}

	shipmentsPolicy, err := authz.ShipmentsPolicy(resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipments policy", err)
		os.Exit(1)
	}
	shipmentsService, err := shipments.NewService(
		shipments.NewRepository(conn),
		needsRepo,
		shipmentsPolicy,
		dbClient,
		cfg.Shipments.OpenLimit,
		admissionMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipments service", err)
		os.Exit(1)
	}

	membershipsService, err := memberships.NewService(memberships.NewRepository(conn), users.NewRepository(conn), resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create memberships service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			accountsService,
			poisService,
			goodsService,
			needsService,
			shipmentsService,
			membershipsService,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
