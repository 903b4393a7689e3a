package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/osvaldoandrade/pitchflow/internal/countdown"
	"github.com/osvaldoandrade/pitchflow/internal/metrics"
	"github.com/osvaldoandrade/pitchflow/internal/middleware"
	"github.com/osvaldoandrade/pitchflow/internal/providers"
	"github.com/osvaldoandrade/pitchflow/internal/ratelimit"
	"github.com/osvaldoandrade/pitchflow/internal/services"
	"github.com/osvaldoandrade/pitchflow/internal/session"
	"github.com/osvaldoandrade/pitchflow/internal/tracing"
	"github.com/osvaldoandrade/pitchflow/pkg/auth/clientsession"
	"github.com/osvaldoandrade/pitchflow/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
)

type Application struct {
	Config          *config.Config
	Engine          *gin.Engine
	Logger          *slog.Logger
	Clients         services.ClientRegistry
	Webhook         providers.DeckWebhook
	Sessions        *clientsession.Tokens
	RateLimiter     ratelimit.SubmitLimiter
	Redis           *redis.Client
	Clock           clockwork.Clock
	Generator       session.Generator
	HTTPClient      *http.Client
	TracingShutdown func(context.Context) error

	stopCleanup context.CancelFunc
}

// ApplicationOption configures the Application
type ApplicationOption func(*Application) error

// WithClock drives countdowns, client expiry and session tokens from clock.
func WithClock(clock clockwork.Clock) ApplicationOption {
	return func(app *Application) error {
		app.Clock = clock
		return nil
	}
}

// WithRedis sets the client used by the submit rate limiter
func WithRedis(rdb *redis.Client) ApplicationOption {
	return func(app *Application) error {
		app.Redis = rdb
		return nil
	}
}

// WithHTTPClient sets the client used to call the deck webhook
func WithHTTPClient(client *http.Client) ApplicationOption {
	return func(app *Application) error {
		app.HTTPClient = client
		return nil
	}
}

// WithGenerator overrides the session id generator.
func WithGenerator(gen session.Generator) ApplicationOption {
	return func(app *Application) error {
		app.Generator = gen
		return nil
	}
}

func NewApplication(cfg *config.Config, opts ...ApplicationOption) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	app := &Application{Config: cfg}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	if app.Clock == nil {
		app.Clock = clockwork.NewRealClock()
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	app.Logger = logger

	shutdown, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Tracing.OTLPInsecure,
		SampleRatio:  cfg.Tracing.SampleRatio,
	}, logger)
	if err != nil {
		// Tracing is optional; keep serving without it.
		logger.Warn("tracing disabled", "err", err)
		shutdown = func(context.Context) error { return nil }
	}
	app.TracingShutdown = shutdown

	if app.Redis == nil {
		app.Redis = providers.NewRedisProvider(cfg.RedisAddr, cfg.RedisPassword)
	}
	if app.Redis != nil {
		if err := providers.PingRedis(context.Background(), app.Redis); err != nil {
			logger.Warn("redis unreachable, submit rate limit fails open", "addr", cfg.RedisAddr, "err", err)
		}
		quota := ratelimit.SubmitQuota{
			PerMinute: cfg.RateLimit.Submit.RequestsPerMinute,
			Burst:     cfg.RateLimit.Submit.BurstSize,
		}
		if quota.Enabled() {
			app.RateLimiter = ratelimit.NewRedisSubmitLimiter(app.Redis, quota, app.Clock)
		}
	}

	webhook, err := providers.NewDeckWebhook(cfg.WebhookURL, cfg.WebhookTimeoutSeconds, app.HTTPClient)
	if err != nil {
		return nil, err
	}
	app.Webhook = webhook

	tokens, err := clientsession.New(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour, app.Clock)
	if err != nil {
		return nil, err
	}
	app.Sessions = tokens

	ticker := countdown.NewTicker(app.Clock, countdown.DefaultPeriod)
	app.Clients = services.NewClientRegistry(func() services.SubmissionController {
		return services.NewSubmissionController(webhook, app.Generator, ticker, logger)
	}, logger, app.Clock, cfg.ClientTTLSeconds, cfg.ClientCleanupSeconds)
	metrics.RegisterClientsCollector(app.Clients, logger)

	cleanupCtx, cancel := context.WithCancel(context.Background())
	app.stopCleanup = cancel
	go app.Clients.Start(cleanupCtx)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(logger),
		middleware.TracingMiddleware(cfg.Tracing.ServiceName),
		middleware.CORSMiddleware(cfg.AllowedOrigins, "/api"),
	)
	app.Engine = engine

	return app, nil
}

// Close stops background work and releases clients. Safe to call once the
// HTTP server has shut down.
func (app *Application) Close(ctx context.Context) error {
	if app.stopCleanup != nil {
		app.stopCleanup()
	}
	if app.Clients != nil {
		metrics.ReleaseClientsCollector(app.Clients)
		app.Clients.Close()
	}
	var errs []error
	if app.TracingShutdown != nil {
		errs = append(errs, app.TracingShutdown(ctx))
	}
	if app.Redis != nil {
		errs = append(errs, app.Redis.Close())
	}
	return errors.Join(errs...)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := new(slog.LevelVar)
	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler).With("service", "pitchflow", "env", cfg.Env)
}
