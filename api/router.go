package api

import (
	"net/http"
	"time"

	"poi-gateway/middleware/quota"
	"poi-gateway/middleware/quota/domain"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
)

type RouterOptions struct {
	Authorizer       quota.Authorizer
	Concurrency      quota.ConcurrencyOptions
	RateLimitHeaders bool

	// LoginThrottle limita os endpoints de login por IP (nil = sem limite)
	LoginThrottle      domain.LimiterStore
	TrustXForwardedFor bool

	CORSAllowedOrigins []string
}

// NewRouter monta todas as rotas.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(hlog.NewHandler(h.Logger))
	r.Use(accessLog())
	r.Use(chimiddleware.Recoverer)
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", quota.CredentialHeader},
			ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Used"},
			MaxAge:         300,
		}))
	}
	r.Use(PrometheusMetrics)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	throttle := quota.ThrottleMiddleware(quota.ThrottleOptions{
		Store:              opts.LoginThrottle,
		TrustXForwardedFor: opts.TrustXForwardedFor,
		RetryAfter:         5 * time.Second,
	})

	gate := quota.Middleware(quota.Options{
		Authorizer:          opts.Authorizer,
		AddRateLimitHeaders: opts.RateLimitHeaders,
	})

	r.Route("/api", func(r chi.Router) {
		r.With(quota.ConcurrencyMiddleware(opts.Concurrency), gate).Get("/franchise", h.Franchise)
		if h.Stats != nil {
			r.With(gate).Get("/usage", h.Usage)
		}

		r.With(throttle).Post("/log-login", h.LogLogin)
		r.With(throttle).Post("/login", h.Login)
	})

	return r
}

func accessLog() func(http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		// nunca logar a query inteira: ela pode carregar a chave de API
		hlog.FromRequest(r).Info().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})
}
