package quota

import (
	"net/http"
	"time"

	"poi-gateway/metrics"
	"poi-gateway/middleware/quota/domain"
)

type ThrottleOptions struct {
	Store              domain.LimiterStore
	KeyFn              KeyFunc
	TrustXForwardedFor bool
	RetryAfter         time.Duration
}

type throttledBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ThrottleMiddleware aplica um token bucket por cliente (IP). Usado nos endpoints de login.
// Sem Store, não limita nada.
func ThrottleMiddleware(opts ThrottleOptions) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.TrustXForwardedFor)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lim := opts.Store.Get(opts.KeyFn(r))
			if lim != nil && !lim.Allow() {
				metrics.ThrottledRequests.WithLabelValues(r.URL.Path).Inc()
				w.Header().Set("Retry-After", formatInt64(int64(opts.RetryAfter.Seconds())))
				writeJSON(w, http.StatusTooManyRequests, throttledBody{Error: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
