package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/recruitdesk-backend/api/routes"
	"github.com/angelmondragon/recruitdesk-backend/internal/assignments"
	"github.com/angelmondragon/recruitdesk-backend/internal/auth"
	"github.com/angelmondragon/recruitdesk-backend/internal/candidates"
	"github.com/angelmondragon/recruitdesk-backend/internal/clientjobs"
	"github.com/angelmondragon/recruitdesk-backend/internal/employees"
	"github.com/angelmondragon/recruitdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db"
	"github.com/angelmondragon/recruitdesk-backend/pkg/followup"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
	"github.com/angelmondragon/recruitdesk-backend/pkg/metrics"
	"github.com/angelmondragon/recruitdesk-backend/pkg/migrate"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox"
	"github.com/angelmondragon/recruitdesk-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
	cfg.Service.Kind = "api"

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	assignmentMetrics := metrics.NewAssignmentMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	mustBuild(logg, "session manager", err)

	employeeRepo := employees.NewRepository(dbClient.DB())
	directory, err := employees.NewDirectory(employeeRepo, redisClient, cfg.Directory.CacheTTL, logg)
	mustBuild(logg, "employee directory", err)
	if _, err := directory.Warm(context.Background()); err != nil {
		logg.Warn(context.Background(), "employee directory warm-up failed; entries load lazily")
	}

	employeeService, err := employees.NewService(employeeRepo, directory, cfg.Password)
	mustBuild(logg, "employee service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		Employees:      employeeRepo,
		SessionManager: sessionManager,
		Directory:      directory,
		JWTConfig:      cfg.JWT,
		Passwords:      cfg.Password,
		Logger:         logg,
	})
	mustBuild(logg, "auth service", err)

	engine := followup.NewEngine(followup.Options{
		Clock:          time.Now,
		OffsetMinutes:  cfg.FollowUp.TimezoneOffsetMinutes,
		MaskWindowDays: cfg.FollowUp.MaskWindowDays,
	})
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	busy, err := assignments.NewRedisBusyFlag(redisClient, cfg.FollowUp.ReassignLockTTL)
	mustBuild(logg, "reassign busy flag", err)

	assignmentService, err := assignments.NewService(assignments.ServiceParams{
		Repository: assignments.NewRepository(dbClient.DB()),
		Tx:         dbClient,
		Outbox:     outboxService,
		Directory:  directory,
		Busy:       busy,
		Engine:     engine,
		Metrics:    assignmentMetrics,
		Logger:     logg,
	})
	mustBuild(logg, "assignment service", err)

	candidateService, err := candidates.NewService(candidates.NewRepository(dbClient.DB()), dbClient, outboxService, engine, assignmentMetrics)
	mustBuild(logg, "candidate service", err)

	clientJobService, err := clientjobs.NewService(clientjobs.NewRepository(dbClient.DB()))
	mustBuild(logg, "client job service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Cache:       redisClient,
			Sessions:    sessionManager,
			Gatherer:    registry,
			Observer:    httpMetrics,
			Auth:        authService,
			Employees:   employeeService,
			ClientJobs:  clientJobService,
			Candidates:  candidateService,
			Assignments: assignmentService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			closeAll(ctx, logg, dbClient, redisClient)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}

	closeAll(ctx, logg, dbClient, redisClient)
	logg.Info(ctx, "api server stopped")
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
