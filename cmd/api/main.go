package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/agrovendas/sales-api/internal/catalog"
	"github.com/agrovendas/sales-api/internal/clients"
	"github.com/agrovendas/sales-api/internal/common"
	"github.com/agrovendas/sales-api/internal/config"
	"github.com/agrovendas/sales-api/internal/draft"
	"github.com/agrovendas/sales-api/internal/export"
	"github.com/agrovendas/sales-api/internal/health"
	"github.com/agrovendas/sales-api/internal/lock"
	"github.com/agrovendas/sales-api/internal/obs"
	"github.com/agrovendas/sales-api/internal/order"
	"github.com/agrovendas/sales-api/internal/queue"
	"github.com/agrovendas/sales-api/internal/ratelimit"
	"github.com/agrovendas/sales-api/internal/resilience"
	"github.com/agrovendas/sales-api/internal/security"
	"github.com/agrovendas/sales-api/internal/sheets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "sales")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "sales-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	outbound := &http.Client{
		Timeout:   cfg.OutboundTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	sheetsClient := sheets.New(cfg.SheetsBaseURL, cfg.SheetsAccount, outbound)
	sheetsClient.Resilient = &resilience.HTTPClient{
		Client:      outbound,
		Breaker:     resilience.NewBreaker(10, 0.5, 30*time.Second).WithTarget("sheets-gateway").WithLogger(logger),
		BaseBackoff: 100 * time.Millisecond,
		MaxAttempts: 3,
		Jitter:      0.2,
	}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Sheets: sheetsClient,
		Cache:  catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Locker: &lock.Locker{R: redisClient},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogService})

	clientsService, err := clients.NewService(clients.ServiceConfig{
		Sheets:       sheetsClient,
		Logger:       logger,
		DefaultLimit: cfg.ClientsDefaultLimit,
		MaxLimit:     cfg.ClientsMaxLimit,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise clients service")
	}
	clientsHandler := &clients.Handler{Service: clientsService}

	draftService := draft.Service{
		Store:   draft.Store{R: redisClient, TTL: cfg.DraftTTL},
		Catalog: catalogService,
		Logger:  &logger,
	}
	draftHandler := draft.NewHandler(draft.HandlerConfig{Service: draftService})

	var store order.Store
	var pool *pgxpool.Pool
	switch cfg.OrderStore {
	case config.StorePostgres:
		if err := order.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply order migrations")
		}
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse database config")
		}
		poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
		if poolConfig.ConnConfig.RuntimeParams == nil {
			poolConfig.ConnConfig.RuntimeParams = map[string]string{}
		}
		poolConfig.ConnConfig.RuntimeParams["application_name"] = "sales-api"
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect database")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("ping database")
		}
		store = order.PGStore{Pool: pool}
	default:
		store = order.RemoteStore{BaseURL: cfg.OrdersAPIURL, HTTP: outbound, Logger: &logger}
	}
	store = order.Instrument(store)

	enqueuer := queue.Enqueuer{
		R:           redisClient,
		Prefix:      cfg.QueueRedisPrefix,
		MaxAttempts: cfg.QueueMaxAttempts,
	}
	orderService := order.Service{
		Store:         store,
		Drafts:        draftService,
		Validator:     validator.New(),
		Logger:        &logger,
		ExportEnqueue: export.Enqueue(enqueuer, cfg.QueueMaxAttempts),
	}
	orderHandler := order.NewHandler(order.HandlerConfig{Service: orderService})

	exportService := export.Service{Orders: store, Dir: cfg.ExportDir, Logger: &logger}
	exportHandler := export.NewHandler(export.HandlerConfig{Service: exportService})

	queueAdmin := &queue.AdminHandler{
		DLQ:    queue.DLQ{R: redisClient, Prefix: cfg.QueueRedisPrefix},
		Queue:  enqueuer,
		Kinds:  []string{export.TaskKind},
		Logger: &logger,
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	limiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "ratelimit:"},
		Config: ratelimit.Config{
			Key:    common.ClientIP,
			Window: cfg.RateLimitWindow,
			Max:    cfg.RateLimitMax,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(security.BodyLimit{Max: int64(envInt("HTTP_MAX_BODY_BYTES", 1<<20))}.Middleware)
	r.Use(limiter.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker: health.Probes{
			Redis: redisClient,
			StorePing: func(ctx context.Context) error {
				if pool != nil {
					return pool.Ping(ctx)
				}
				return nil
			},
		},
		StoreTimeout: envDurationMillis("HEALTH_READY_STORE_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{productId}", catalogHandler.Product)
		v.Post("/catalog/refresh", catalogHandler.Refresh)

		v.Get("/clients", clientsHandler.List)
		v.Get("/clients/{registration}/history", clientsHandler.History)

		v.Get("/payment-schedules", draftHandler.Schedules)

		v.Route("/drafts", func(d chi.Router) {
			d.Post("/", draftHandler.Create)
			d.Route("/{draftId}", func(one chi.Router) {
				one.Get("/", draftHandler.Get)
				one.Delete("/", draftHandler.Discard)
				one.Post("/lines", draftHandler.AddLine)
				one.Patch("/lines/{lineIndex}", draftHandler.EditLine)
				one.Delete("/lines/{lineIndex}", draftHandler.RemoveLine)
				one.Put("/payment", draftHandler.SetPayment)
			})
		})

		v.Route("/orders", func(o chi.Router) {
			o.With(idem.Middleware).Post("/", orderHandler.Submit)
			o.Get("/", orderHandler.List)
			o.Route("/{orderId}", func(one chi.Router) {
				one.Get("/", orderHandler.Get)
				one.Put("/", orderHandler.Update)
				one.Delete("/", orderHandler.Delete)
				one.Post("/validate", orderHandler.Validate)
				one.Post("/edit", orderHandler.Edit)
				one.Get("/document", exportHandler.Document)
			})
		})

		v.Route("/admin/queue", func(q chi.Router) {
			q.Get("/dlq", queueAdmin.ListDLQ)
			q.Post("/dlq/requeue", queueAdmin.RequeueDLQ)
			q.Post("/dlq/delete", queueAdmin.DeleteDLQ)
			q.Get("/stats", queueAdmin.Stats)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	health.SetReady(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
