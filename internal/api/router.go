package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gatherly/server/internal/api/handlers"
	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/audit"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/authz"
	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/rsvps"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/metrics"
	"github.com/gatherly/server/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps carries everything the router needs. Pool may be nil when the
// repository is not Postgres-backed (tests run on the memory store).
type Deps struct {
	Config    config.Config
	Logger    zerolog.Logger
	Repo      storage.Repository
	Pool      *pgxpool.Pool
	Mailer    rsvps.Mailer
	Version   string
	GitCommit string
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logger := deps.Logger

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	auditLogger := audit.NewLogger(logger)

	eventsService := events.NewService(deps.Repo.Events())
	rsvpsService := rsvps.NewService(deps.Repo.RSVPs(), deps.Repo.Events(), deps.Mailer, logger)
	usersService := users.NewService(deps.Repo.Users(), auditLogger, logger)

	engine := authz.NewEngine(authz.EventOwnerResolver{Events: deps.Repo.Events()})
	guard := handlers.NewGuard(engine, auditLogger, cfg.Environment)

	eventsHandler := handlers.NewEventsHandler(eventsService, guard, auditLogger, cfg.Environment)
	rsvpsHandler := handlers.NewRSVPsHandler(rsvpsService, guard, cfg.Environment)
	authHandler := handlers.NewAuthHandler(usersService, jwtManager, cfg.Environment)
	healthChecker := handlers.NewHealthChecker(deps.Pool, deps.Version, deps.GitCommit)

	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(deps.Pool))
	mux.Handle("/health", healthChecker.Health())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/auth/signup", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Signup),
	}))
	mux.Handle("/api/v1/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginTier(http.HandlerFunc(authHandler.Login)),
	}))
	mux.Handle("/api/v1/auth/logout", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Logout),
	}))

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
	}))
	mux.Handle("/api/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPut:    http.HandlerFunc(eventsHandler.Update),
		http.MethodDelete: http.HandlerFunc(eventsHandler.Delete),
	}))
	mux.Handle("/api/v1/events/{id}/rsvps", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(rsvpsHandler.ListByEvent),
	}))
	mux.Handle("/api/v1/events/{id}/rsvps/export", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(rsvpsHandler.Export),
	}))

	mux.Handle("/api/v1/rsvps", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(rsvpsHandler.Create),
	}))

	mux.Handle("/api/v1/my/events", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.ListMine),
	}))
	mux.Handle("/api/v1/my/attendees", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(rsvpsHandler.MyAttendees),
	}))

	var handler http.Handler = mux
	handler = middleware.Session(jwtManager)(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.SecurityHeaders(cfg.Environment == "production")(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
