package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
	"github.com/angelmondragon/recruitdesk-backend/pkg/metrics"
	"github.com/angelmondragon/recruitdesk-backend/pkg/migrate"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox/registry"
	"github.com/angelmondragon/recruitdesk-backend/pkg/pubsub"
)

const serviceKind = "outbox-publisher"

func main() {
	drain := flag.Int("drain", 0, "publish at most this many batches, then exit once the outbox is empty")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics on this address while publishing")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	mustBuild(logg, "config", err)
	cfg.Service.Kind = serviceKind

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	mustBuild(logg, "database", err)
	mustBuild(logg, "dev migrations", migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient))

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	mustBuild(logg, "pubsub client", err)

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	mustBuild(logg, "event registry", err)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		PubSub:     pubsubClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		Registry:   eventRegistry,
		Metrics:    metrics.NewOutboxMetrics(reg),
	})
	mustBuild(logg, "outbox publisher", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"topic":       cfg.PubSub.AssignmentsTopic,
	})

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "metrics listener stopped", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if *drain > 0 {
		batches, err := service.Drain(ctx, *drain)
		logg.Info(logg.WithField(ctx, "batches", batches), "outbox drain finished")
		closeAll(ctx, logg, dbClient, pubsubClient)
		if err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "outbox drain failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting outbox publisher")
	runErr := service.Run(ctx)
	closeAll(ctx, logg, dbClient, pubsubClient)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", runErr)
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}

type closer interface {
	Close() error
}

func closeAll(ctx context.Context, logg *logger.Logger, resources ...closer) {
	var errs error
	for _, res := range resources {
		errs = multierr.Append(errs, res.Close())
	}
	if errs != nil {
		logg.Error(ctx, "error closing resources", errs)
	}
}

func mustBuild(logg *logger.Logger, component string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+component, err)
	os.Exit(1)
}
