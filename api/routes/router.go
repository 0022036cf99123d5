package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/recruitdesk-backend/api/controllers"
	"github.com/angelmondragon/recruitdesk-backend/api/middleware"
	"github.com/angelmondragon/recruitdesk-backend/internal/assignments"
	"github.com/angelmondragon/recruitdesk-backend/internal/auth"
	"github.com/angelmondragon/recruitdesk-backend/internal/candidates"
	"github.com/angelmondragon/recruitdesk-backend/internal/clientjobs"
	"github.com/angelmondragon/recruitdesk-backend/internal/employees"
	"github.com/angelmondragon/recruitdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
	"github.com/angelmondragon/recruitdesk-backend/pkg/redis"
)

// CacheStore is the Redis surface the HTTP layer needs for idempotency
// records and login throttling.
type CacheStore interface {
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Ping(ctx context.Context) error
}

type requestObserver interface {
	Observe(method, route string, status int, duration time.Duration)
}

// RouterParams carries everything the API routes are wired to.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Cache    CacheStore
	Sessions session.AccessSessionChecker
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Observer requestObserver

	Auth        auth.Service
	Employees   employees.Service
	ClientJobs  clientjobs.Service
	Candidates  candidates.Service
	Assignments assignments.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, p.Observer),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.LoginThrottlePolicy{
		Window:        cfg.AuthRateLimit.LoginWindow,
		IPLimit:       cfg.AuthRateLimit.LoginIPLimit,
		IdentityLimit: cfg.AuthRateLimit.LoginIdentityLimit,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": cachePinger(p.Cache),
		}))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginThrottle(loginPolicy, rateStore(p.Cache), logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, p.Sessions, logg)).Post("/logout", controllers.AuthLogout(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(idempotencyStore(p.Cache), logg))

		supervisors := middleware.RequireRole(logg, enums.EmployeeRoleAdmin, enums.EmployeeRoleManager)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", controllers.ListExecutives(p.Employees, logg))
			r.With(middleware.RequireRole(logg, enums.EmployeeRoleAdmin)).Post("/", controllers.CreateEmployee(p.Employees, logg))
			r.With(middleware.RequireRole(logg, enums.EmployeeRoleAdmin)).Patch("/{employeeId}", controllers.SetEmployeeActive(p.Employees, logg))
		})

		r.Route("/client-jobs", func(r chi.Router) {
			r.Get("/", controllers.ListClientJobs(p.ClientJobs, logg))
			r.With(supervisors).Post("/", controllers.CreateClientJob(p.ClientJobs, logg))
			r.With(supervisors).Patch("/{jobId}", controllers.UpdateClientJobStatus(p.ClientJobs, logg))
		})

		r.Route("/candidates", func(r chi.Router) {
			r.Get("/", controllers.SearchCandidates(p.Candidates, logg))
			r.Post("/", controllers.RegisterCandidate(p.Candidates, logg))
			r.Get("/{candidateId}", controllers.GetCandidate(p.Candidates, logg))
			r.Get("/{candidateId}/assignments", controllers.ListCandidateAssignments(p.Assignments, logg))
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", controllers.CreateAssignment(p.Assignments, logg))
			r.Get("/{assignmentId}", controllers.GetAssignment(p.Assignments, logg))
			r.Post("/{assignmentId}/feedback", controllers.RecordFeedback(p.Assignments, logg))
			r.Post("/{assignmentId}/reassign", controllers.ReassignAssignment(p.Assignments, logg))
		})
	})

	return r
}

// The helpers below keep a nil CacheStore from becoming a non-nil interface
// holding a nil pointer.

func cachePinger(c CacheStore) controllers.Pinger {
	if c == nil {
		return nil
	}
	return c
}

func idempotencyStore(c CacheStore) redis.IdempotencyStore {
	if c == nil {
		return nil
	}
	return c
}

func rateStore(c CacheStore) interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
} {
	if c == nil {
		return nil
	}
	return c
}
