package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/recruitdesk-backend/internal/assignments"
	"github.com/angelmondragon/recruitdesk-backend/internal/cron"
	"github.com/angelmondragon/recruitdesk-backend/internal/employees"
	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db"
	"github.com/angelmondragon/recruitdesk-backend/pkg/followup"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
	"github.com/angelmondragon/recruitdesk-backend/pkg/metrics"
	"github.com/angelmondragon/recruitdesk-backend/pkg/migrate"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox"
	"github.com/angelmondragon/recruitdesk-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run every job a single time and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	jobMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	assignmentMetrics := metrics.NewAssignmentMetrics(prometheus.DefaultRegisterer)

	lock, err := redis.NewLock(redisClient, redisClient.LockKey("cron", lockID(cfg.App.Env)), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	employeeRepo := employees.NewRepository(dbClient.DB())
	directory, err := employees.NewDirectory(employeeRepo, redisClient, cfg.Directory.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create employee directory", err)
		os.Exit(1)
	}

	engine := followup.NewEngine(followup.Options{
		Clock:          time.Now,
		OffsetMinutes:  cfg.FollowUp.TimezoneOffsetMinutes,
		MaskWindowDays: cfg.FollowUp.MaskWindowDays,
	})
	outboxRepo := outbox.NewRepository(dbClient.DB())

	busy, err := assignments.NewRedisBusyFlag(redisClient, cfg.FollowUp.ReassignLockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create reassign busy flag", err)
		os.Exit(1)
	}
	assignmentService, err := assignments.NewService(assignments.ServiceParams{
		Repository: assignments.NewRepository(dbClient.DB()),
		Tx:         dbClient,
		Outbox:     outbox.NewService(outboxRepo, logg),
		Directory:  directory,
		Busy:       busy,
		Engine:     engine,
		Metrics:    assignmentMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment service", err)
		os.Exit(1)
	}

	lapsedJob, err := cron.NewFollowUpLapsedJob(cron.FollowUpLapsedJobParams{
		Logger:   logg,
		Emitter:  assignmentService,
		Location: engine.Location(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create follow-up lapsed job", err)
		os.Exit(1)
	}
	warmJob, err := cron.NewDirectoryWarmJob(logg, directory)
	if err != nil {
		logg.Error(context.Background(), "failed to create directory warm job", err)
		os.Exit(1)
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
		Retention:  cfg.Outbox.RetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(lapsedJob, warmJob, retentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  jobMetrics,
		Schedule: cfg.Cron.Schedule,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"schedule":    cfg.Cron.Schedule,
	})

	if *once {
		logg.Info(ctx, "running cron jobs once")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron run failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockID(env string) string {
	if env == "" {
		return "local"
	}
	return env
}
