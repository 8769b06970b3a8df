// Package main is the entrypoint for the journal API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	_ "time/tzdata" // request tz names must resolve on minimal images

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/eugeneokaka/journal/internal/auth"
	"github.com/eugeneokaka/journal/internal/cache"
	"github.com/eugeneokaka/journal/internal/config"
	"github.com/eugeneokaka/journal/internal/handler"
	"github.com/eugeneokaka/journal/internal/metrics"
	"github.com/eugeneokaka/journal/internal/middleware"
	"github.com/eugeneokaka/journal/internal/repository"
	"github.com/eugeneokaka/journal/internal/server"
	"github.com/eugeneokaka/journal/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// run wires the dependencies and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	defaultLoc, err := cfg.Location()
	if err != nil {
		return err
	}

	if cfg.AutoMigrate {
		schemaVersion, err := repository.Migrate(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.New("migration failed: " + sanitizeError(err, cfg.DatabaseURL))
		}
		logger.Info("database migrated", "version", schemaVersion)
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("database unavailable")
	}
	logger.Info("connected to database")

	// Initialize cache. Without Redis the service runs uncached and unlimited.
	var (
		cacheClient *cache.Cache
		userCache   service.UserCache
		limiter     middleware.RateLimiter
		cacheHealth handler.HealthChecker
	)
	if cfg.CacheEnabled() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL, cache.Options{IdentityTTL: cfg.IdentityCacheTTL})
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			return errors.New("redis unavailable")
		}
		userCache = cacheClient
		limiter = cacheClient
		cacheHealth = cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set; identity cache and rate limiting disabled")
	}

	verifier, err := auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, cfg.AuthJWTAudience, cfg.AuthClockSkew)
	if err != nil {
		return err
	}

	// Initialize services
	recorder := metrics.NewPrometheus()
	identities := service.NewIdentityService(repo, userCache, logger, recorder)
	entries := service.NewEntryService(repo, identities, logger, recorder)

	// Initialize handlers
	handlers := routes{
		root:    handler.New(version),
		health:  handler.NewHealthHandler(repo, cacheHealth, logger),
		metrics: handler.NewMetricsHandler(recorder.Handler()),
		auth:    handler.NewAuthHandler(identities, logger),
		entries: handler.NewEntryHandler(entries, logger, defaultLoc),
	}

	// Setup router
	r := setupRouter(handlers, verifier, limiter, recorder, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
		"default_timezone", defaultLoc.String(),
	)

	return srv.Run(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routes bundles the HTTP handlers mounted by setupRouter.
type routes struct {
	root    *handler.Handler
	health  *handler.HealthHandler
	metrics *handler.MetricsHandler
	auth    *handler.AuthHandler
	entries *handler.EntryHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h routes,
	verifier middleware.TokenVerifier,
	limiter middleware.RateLimiter,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	corsCfg.AllowCredentials = len(corsCfg.AllowedOrigins) > 0

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.Instrument(recorder))
	r.Use(middleware.Session(middleware.SessionConfig{
		Logger:     logger,
		Verifier:   verifier,
		CookieName: cfg.AuthSessionCookie,
	}))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	// Root info endpoint
	r.Get("/", h.root.Hello)

	// Sync may name the external id in the body, so a session is optional.
	r.Post("/auth/sync", h.auth.Sync)

	// Entry routes (require a signed-in caller)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Use(middleware.RateLimitUser(middleware.RateLimitConfig{
			Logger:            logger,
			Limiter:           limiter,
			Metrics:           recorder,
			Enabled:           cfg.RateLimitEnabled,
			RequestsPerMinute: cfg.RateLimitRPM,
			Burst:             cfg.RateLimitBurst,
		}))

		r.Post("/entry", h.entries.Create)
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.entries.List)
			r.Get("/weeks", h.entries.Weeks)
			r.Get("/{id}", h.entries.Get)
			r.Patch("/{id}", h.entries.Update)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.root.NotFound)
	r.MethodNotAllowed(h.root.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
