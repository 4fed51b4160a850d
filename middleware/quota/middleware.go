package quota

import (
	"context"
	"net/http"
	"time"

	"poi-gateway/metrics"
	"poi-gateway/middleware/quota/domain"
)

// Authorizer é o contrato que o middleware usa (application.Service implementa).
type Authorizer interface {
	Authorize(ctx context.Context, req domain.Request) domain.Verdict
}

type Options struct {
	Authorizer   Authorizer
	CredentialFn CredentialFunc
	// AddRateLimitHeaders adiciona X-RateLimit-Limit/Remaining/Used nas respostas.
	AddRateLimitHeaders bool
	Now                 func() time.Time
}

const (
	msgMisconfigured = "No API keys configured on server"
	msgUnauthorized  = "Invalid or missing API key"
	msgQuotaExceeded = "Daily API quota exceeded"
)

type errorBody struct {
	Error string `json:"error"`
}

type quotaExceededBody struct {
	Error     string `json:"error"`
	Role      string `json:"role"`
	Used      int64  `json:"used"`
	Remaining int64  `json:"remaining"`
}

type verdictKey struct{}

// WithVerdict guarda o veredito no contexto do request.
func WithVerdict(ctx context.Context, v domain.Verdict) context.Context {
	return context.WithValue(ctx, verdictKey{}, v)
}

// VerdictFrom lê o veredito guardado pelo Middleware.
func VerdictFrom(ctx context.Context) (domain.Verdict, bool) {
	v, ok := ctx.Value(verdictKey{}).(domain.Verdict)
	return v, ok
}

// Middleware autentica a credencial e aplica a quota diária antes do próximo handler.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.CredentialFn == nil {
		opts.CredentialFn = CredentialFromRequest
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			v := opts.Authorizer.Authorize(r.Context(), domain.Request{
				Credential: opts.CredentialFn(r),
				ClientIP:   ClientIP(r),
				Franchise:  q.Get("franchise"),
				Status:     q.Get("status"),
				Region:     q.Get("region"),
			})

			role := string(v.Role)
			if role == "" {
				role = "none"
			}
			metrics.RecordVerdict(string(v.Outcome), role, v.Degraded)

			switch v.Outcome {
			case domain.OutcomeServerMisconfigured:
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgMisconfigured})
				return
			case domain.OutcomeUnauthorized:
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: msgUnauthorized})
				return
			case domain.OutcomeQuotaExceeded:
				w.Header().Set("Retry-After", formatInt64(secondsUntilNextUTCDay(opts.Now())))
				writeJSON(w, http.StatusTooManyRequests, quotaExceededBody{
					Error:     msgQuotaExceeded,
					Role:      string(v.Role),
					Used:      v.Used,
					Remaining: v.Remaining,
				})
				return
			}

			if opts.AddRateLimitHeaders && !v.Unlimited {
				w.Header().Set("X-RateLimit-Limit", formatInt64(v.Limit))
				w.Header().Set("X-RateLimit-Remaining", formatInt64(v.Remaining))
				w.Header().Set("X-RateLimit-Used", formatInt64(v.Used))
			}

			next.ServeHTTP(w, r.WithContext(WithVerdict(r.Context(), v)))
		})
	}
}

// a janela vira junto com a data UTC da chave do contador
func secondsUntilNextUTCDay(now time.Time) int64 {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	secs := int64(next.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
