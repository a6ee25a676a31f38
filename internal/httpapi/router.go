package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"llm_compare/internal/compare"
	"llm_compare/internal/config"
	"llm_compare/internal/gate"
	"llm_compare/internal/metrics"
	"llm_compare/internal/middleware"
	"llm_compare/internal/providers"
	"llm_compare/internal/session"
)

const sessionCleanupInterval = time.Minute

// Dependencies aggregates all services the HTTP layer needs.
type Dependencies struct {
	Sessions *session.Manager
	Store    session.Store
	Gate     *gate.Gate
	Compare  *compare.Service
	Registry *providers.Registry
	Metrics  metrics.Metrics
	Logger   zerolog.Logger

	stopCleanup context.CancelFunc
}

// NewRouter creates an HTTP handler with all dependencies wired up
func NewRouter(cfg *config.Config, logger zerolog.Logger) (http.Handler, *Dependencies, error) {
	store, stopCleanup, err := newSessionStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	secrets := config.NewSecretStore(cfg.SecretsFile)
	g := gate.New(secrets, logger)
	if g.UsingFallback() {
		logger.Warn().
			Str("secrets_file", secrets.Path()).
			Msg("no password configured, using the built-in default; do not expose this instance")
	}

	m := metrics.New(cfg.Metrics.Enabled)
	registry := providers.NewRegistry(cfg, logger)

	deps := &Dependencies{
		Sessions: session.NewManager(
			store,
			session.NewSigner([]byte(cfg.Session.Secret)),
			cfg.Session.CookieName,
			cfg.Session.Secure,
		),
		Store:       store,
		Gate:        g,
		Compare:     compare.NewService(compare.FromProviders(registry.Providers()), cfg.Provider.Concurrent, m, logger),
		Registry:    registry,
		Metrics:     m,
		Logger:      logger,
		stopCleanup: stopCleanup,
	}

	return deps.Handler(), deps, nil
}

func newSessionStore(cfg *config.Config, logger zerolog.Logger) (session.Store, context.CancelFunc, error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client, err := session.NewRedisClient(session.RedisConfig{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("using Redis session store")
		return session.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Session.TTL), func() {}, nil

	case config.SessionStoreMemory, "":
		store := session.NewMemoryStore(cfg.Session.CacheSize, cfg.Session.TTL)
		ctx, cancel := context.WithCancel(context.Background())
		go store.RunCleanup(ctx, sessionCleanupInterval)
		return store, cancel, nil

	default:
		return nil, nil, fmt.Errorf("unsupported session store %q", cfg.Session.Store)
	}
}

// Handler returns the routes wrapped in the request id and access log
// middleware.
func (d *Dependencies) Handler() http.Handler {
	mux := http.NewServeMux()
	registerRoutes(mux, d)
	return middleware.Chain(mux, middleware.RequestID(), middleware.AccessLog(d.Logger))
}

// Close stops background work and releases the session store and the
// provider HTTP client.
func (d *Dependencies) Close() error {
	if d.stopCleanup != nil {
		d.stopCleanup()
	}

	var errs []error
	if d.Store != nil {
		errs = append(errs, d.Store.Close())
	}
	if d.Registry != nil {
		errs = append(errs, d.Registry.Close())
	}
	return errors.Join(errs...)
}

func registerRoutes(mux *http.ServeMux, d *Dependencies) {
	withSession := middleware.SessionMiddleware(d.Sessions, d.Logger)

	mux.Handle("GET /{$}", withSession(http.HandlerFunc(d.handleIndex)))
	mux.Handle("POST /login", withSession(http.HandlerFunc(d.handleLogin)))
	mux.Handle("POST /compare", withSession(http.HandlerFunc(d.handleCompare)))
	mux.Handle("POST /logout", withSession(http.HandlerFunc(d.handleLogout)))
	mux.Handle("POST /api/compare", withSession(http.HandlerFunc(d.handleAPICompare)))

	mux.HandleFunc("GET /health", d.handleHealth)
	mux.Handle("GET /metrics", d.Metrics.HTTPHandler())
}
