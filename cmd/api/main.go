// Package main is the entrypoint for the Dandi API server.
package main

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/dandi/dandi/internal/cache"
	"github.com/dandi/dandi/internal/config"
	"github.com/dandi/dandi/internal/github"
	"github.com/dandi/dandi/internal/handler"
	"github.com/dandi/dandi/internal/identity"
	"github.com/dandi/dandi/internal/metrics"
	"github.com/dandi/dandi/internal/middleware"
	"github.com/dandi/dandi/internal/repository"
	"github.com/dandi/dandi/internal/server"
	"github.com/dandi/dandi/internal/service"
	"github.com/dandi/dandi/internal/summarize"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	recorder := metrics.NewPrometheus(nil)

	// The credential store is optional: without it key operations answer
	// with a configuration error, as the health checks report.
	var store repository.Store
	if cfg.DatabaseURL != "" {
		store, err = repository.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(
				"failed to open credential store",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("credential store ready", slog.String("database_url", redactURL(cfg.DatabaseURL)))
	} else {
		logger.Warn("DATABASE_URL not set; API key operations are disabled")
	}

	validations, err := openValidationCache(ctx, cfg)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}

	model, err := newModel(ctx, cfg)
	if err != nil {
		logger.Warn("language model not configured; summaries are disabled",
			slog.String("provider", cfg.LLMProvider),
			slog.String("error", err.Error()),
		)
	}

	sessionStore := newSessionStore(cfg, logger)

	var oauth *identity.OAuth
	if cfg.OAuthEnabled() {
		oauth = identity.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthCallbackURL())
	}

	keyService := service.NewKeyService(store, validations, cfg.StoreTimeout, logger, recorder)
	deps := routerDeps{
		health:     handler.NewHealthHandler(healthCheck(store), validations),
		keys:       handler.NewKeyHandler(keyService, logger),
		protected:  handler.NewProtectedHandler(keyService, logger),
		summarizer: handler.NewSummarizerHandler(keyService, newGitHubClient(cfg, recorder), summarize.NewPipeline(model, cfg.LLMTimeout, logger, recorder), logger),
		auth:       handler.NewAuthHandler(oauth, identity.NewBridge(store, cfg.StoreTimeout, logger), sessionStore, logger),
		sessions:   sessionStore,
		metrics:    recorder,
	}

	r := setupRouter(deps, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if store != nil {
		srv.OnShutdown("store", func(context.Context) error {
			store.Close()
			return nil
		})
	}
	srv.OnShutdown("validation cache", func(context.Context) error {
		return validations.Close()
	})

	logger.Info("starting server",
		slog.Int("port", cfg.AppPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("env", cfg.AppEnv),
		slog.String("llm_provider", cfg.LLMProvider),
		slog.Bool("oauth", oauth != nil),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
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
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openValidationCache returns Redis when REDIS_URL is set and an
// in-process LRU otherwise.
func openValidationCache(ctx context.Context, cfg *config.Config) (cache.Validations, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(cfg.ValidationCacheSize, cfg.ValidationCacheTTL), nil
	}
	return cache.New(ctx, cfg.RedisURL, cfg.ValidationCacheTTL)
}

// newModel builds the configured provider. The returned interface is nil
// when the provider's API key is missing.
func newModel(ctx context.Context, cfg *config.Config) (summarize.Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		m, err := summarize.NewGemini(ctx, summarize.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		m, err := summarize.NewOpenAI(summarize.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func newGitHubClient(cfg *config.Config, recorder metrics.Recorder) *github.Client {
	return github.NewClient(github.Config{
		APIURL:         cfg.GitHubAPIURL,
		Token:          cfg.GitHubToken,
		Timeout:        cfg.GitHubTimeout,
		MaxReadmeBytes: cfg.GitHubMaxReadmeBytes,
	}, recorder)
}

// newSessionStore signs cookies with SESSION_SECRET. Without one a random
// secret is used, so sessions do not survive a restart.
func newSessionStore(cfg *config.Config, logger *slog.Logger) sessions.Store {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
		logger.Warn("SESSION_SECRET not set; using an ephemeral session secret")
	}
	return identity.NewCookieStore(secret, cfg.IsProduction())
}

// healthCheck keeps a nil store a nil interface for the readiness probe.
func healthCheck(store repository.Store) handler.HealthChecker {
	if store == nil {
		return nil
	}
	return store
}

type routerDeps struct {
	health     *handler.HealthHandler
	keys       *handler.KeyHandler
	protected  *handler.ProtectedHandler
	summarizer *handler.SummarizerHandler
	auth       *handler.AuthHandler
	sessions   sessions.Store
	metrics    *metrics.PrometheusRecorder
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	h := handler.New()
	r := chi.NewRouter()

	var recorder metrics.Recorder
	if deps.metrics != nil {
		recorder = deps.metrics
	}

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		r.Use(middleware.CORS(origins))
	}
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/", h.Index)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	if deps.metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/signin", deps.auth.SignIn)
		r.Get("/callback/google", deps.auth.Callback)
		r.Post("/signout", deps.auth.SignOut)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth/session", deps.auth.Session)

		r.Group(func(r chi.Router) {
			if cfg.KeysRequireSession {
				r.Use(middleware.RequireSession(deps.sessions, logger))
			}
			r.Get("/keys", deps.keys.List)
			r.Post("/keys", deps.keys.Create)
			r.Put("/keys", deps.keys.Update)
			r.Delete("/keys", deps.keys.Delete)
		})

		r.Post("/protected", deps.protected.Validate)
		r.Post("/github-summarizer", deps.summarizer.Summarize)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

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
