package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"poi-gateway/api"
	"poi-gateway/catalog"
	"poi-gateway/config"
	"poi-gateway/logging"
	"poi-gateway/loginlog"
	"poi-gateway/middleware/quota"
	"poi-gateway/middleware/quota/application"
	"poi-gateway/middleware/quota/domain"
	"poi-gateway/middleware/quota/infra"
	"poi-gateway/users"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New(logging.Config{})
		boot.Fatal().Err(err).Msg("config error")
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Catalog.FetchTimeout)
	cat, err := catalog.Open(loadCtx, &http.Client{Timeout: cfg.Catalog.FetchTimeout}, cfg.Catalog.Source)
	loadCancel()
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.Catalog.Source).Msg("failed to load catalog")
	}

	// sem Redis o gateway sobe assim mesmo: a quota fica em fail-open
	var rdb *redis.Client
	if cfg.RedisConfigured() {
		rdb, err = newRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid redis configuration")
		}
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis ping failed, quota will fail open until it recovers")
		}
		pingCancel()
	}

	counter := newCounterStore(ctx, cfg, rdb, logger)

	// estatísticas de uso: Redis quando disponível, senão memória do processo
	var stats interface {
		domain.AuditSink
		domain.UsageReader
	}
	if cfg.Audit.RedisStats && rdb != nil {
		stats = infra.NewRedisAuditStore(
			rdb,
			infra.WithAuditPrefix(cfg.Audit.Prefix),
			infra.WithAuditTTL(cfg.Audit.TTL),
			infra.WithAuditTrackKeys(cfg.Audit.TrackKeys),
		)
	} else {
		stats = infra.NewMemoryAuditStore(infra.WithRetainDays(retainDays(cfg.Audit.TTL)))
	}
	audit := infra.MultiAuditSink{infra.LogAuditSink{Logger: logger}, stats}

	secrets := application.Secrets{
		Admin:              cfg.Keys.Admin,
		TeamPark:           cfg.Keys.TeamPark,
		TeamDynamic:        cfg.Keys.TeamDynamic,
		TeamPOI:            cfg.Keys.TeamPOI,
		TeamDigitalDisplay: cfg.Keys.TeamDigitalDisplay,
	}
	resolver := application.NewResolver(secrets.Bindings())
	if !resolver.Configured() {
		logger.Warn().Msg("no API keys configured, /api/franchise will answer 500")
	}

	svc := application.Service{
		Resolver: resolver,
		Policy: application.Policy{Quotas: domain.QuotaTable{
			domain.RoleAdmin:              {Unlimited: true},
			domain.RoleTeamPark:           {Limit: cfg.Quota.TeamPark},
			domain.RoleTeamDynamic:        {Limit: cfg.Quota.TeamDynamic},
			domain.RoleTeamPOI:            {Limit: cfg.Quota.TeamPOI},
			domain.RoleTeamDigitalDisplay: {Limit: cfg.Quota.TeamDigitalDisplay},
		}},
		Counter:   counter,
		Audit:     audit,
		Namespace: cfg.Quota.Namespace,
		TTL:       cfg.Quota.WindowTTL,
		Logger:    logger,
	}

	dir, err := users.NewDirectory(cfg.Login.Accounts)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid login accounts")
	}

	var throttle domain.LimiterStore
	if cfg.Login.ThrottleRPS > 0 {
		st := infra.NewThrottleStore(cfg.Login.ThrottleRPS, cfg.Login.ThrottleBurst)
		st.StartJanitor(ctx)
		throttle = st
	}

	h := &api.Handler{
		Catalog:  cat,
		LoginLog: loginlog.New(cfg.LoginLog.Dir),
		Users:    dir,
		Stats:    stats,
		Logger:   logger,
	}
	if b, ok := counter.(*infra.BreakerCounterStore); ok {
		h.CounterState = func() string { return b.State().String() }
	}
	router := api.NewRouter(h, api.RouterOptions{
		Authorizer: svc,
		Concurrency: quota.ConcurrencyOptions{
			Max:            cfg.Server.ConcurrencyMax,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.Server.ConcurrencyTimeout,
		},
		RateLimitHeaders:   cfg.Server.RateLimitHeaders,
		LoginThrottle:      throttle,
		TrustXForwardedFor: cfg.Server.TrustXFF,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", cfg.Server.ListenAddr).
		Int("records", cat.Len()).
		Str("counter", cfg.Counter.Backend).
		Bool("redis", rdb != nil).
		Bool("redis_stats", cfg.Audit.RedisStats && rdb != nil).
		Int("accounts", dir.Len()).
		Int("concurrency_max", cfg.Server.ConcurrencyMax).
		Msg("gateway listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		var err error
		if opts, err = redis.ParseURL(cfg.URL); err != nil {
			return nil, err
		}
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	return redis.NewClient(opts), nil
}

// newCounterStore escolhe o backend do contador diário. nil = fail-open permanente.
func newCounterStore(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) domain.CounterStore {
	switch cfg.Counter.Backend {
	case "redis":
		if rdb == nil {
			logger.Warn().Msg("counter backend is redis but no redis is configured, quota disabled")
			return nil
		}
		return infra.NewBreakerCounterStore(infra.NewRedisCounterStore(rdb), infra.BreakerSettings{
			Name:             "redis-counter",
			FailureThreshold: cfg.Counter.BreakerFailures,
			OpenTimeout:      cfg.Counter.BreakerOpenTimeout,
		})
	case "memory":
		mem := infra.NewMemoryCounterStore()
		go func() {
			t := time.NewTicker(time.Minute)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					mem.Cleanup()
				}
			}
		}()
		logger.Warn().Msg("memory counter in use, quotas are per process and reset on restart")
		return mem
	default:
		logger.Warn().Msg("counter backend disabled, quota will always fail open")
		return nil
	}
}

// retainDays converte o TTL das estatísticas em dias guardados na memória.
func retainDays(ttl time.Duration) int {
	if d := int(ttl / (24 * time.Hour)); d > 0 {
		return d
	}
	return 1
}
