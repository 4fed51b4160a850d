package api

import (
	"errors"
	"net/http"
	"time"

	"poi-gateway/catalog"
	"poi-gateway/loginlog"
	"poi-gateway/metrics"
	"poi-gateway/middleware/quota"
	"poi-gateway/middleware/quota/domain"
	"poi-gateway/users"
	"poi-gateway/validation"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 16

// Handler agrupa as dependências dos handlers. Tudo é somente leitura depois da subida.
type Handler struct {
	Catalog  *catalog.Catalog
	LoginLog *loginlog.Logger
	Users    *users.Directory
	// Stats alimenta GET /api/usage (nil = rota desligada)
	Stats domain.UsageReader
	// CounterState reporta o circuito do contador no /healthz (nil = sem breaker)
	CounterState func() string
	Logger       zerolog.Logger
}

type rateLimitBody struct {
	Role string `json:"role"`
	Used int64  `json:"used"`
	// nil = ilimitado (serializa como null)
	Remaining *int64 `json:"remaining"`
}

type franchiseResponse struct {
	Count     int              `json:"count"`
	Data      []catalog.Record `json:"data"`
	RateLimit rateLimitBody    `json:"rate_limit"`
}

// Franchise filtra o catálogo. Roda depois de quota.Middleware, que já autorizou a chamada.
func (h *Handler) Franchise(w http.ResponseWriter, r *http.Request) {
	v, ok := quota.VerdictFrom(r.Context())
	if !ok {
		// rota montada sem o middleware de quota
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "quota gate not configured"})
		return
	}

	q := r.URL.Query()
	data := h.Catalog.Filter(catalog.Criteria{
		Franchise: q.Get("franchise"),
		Status:    q.Get("status"),
		Region:    q.Get("region"),
	})
	if data == nil {
		data = []catalog.Record{}
	}

	rl := rateLimitBody{Role: string(v.Role), Used: v.Used}
	if !v.Unlimited {
		remaining := v.Remaining
		rl.Remaining = &remaining
	}

	w.Header().Set("Cache-Control", "no-store, max-age=0")
	writeJSON(w, http.StatusOK, franchiseResponse{Count: len(data), Data: data, RateLimit: rl})
}

type logLoginRequest struct {
	Username string `json:"username" validate:"required"`
}

// LogLogin grava o evento de login. Nunca deixa erro escapar: responde 500 com success=false.
func (h *Handler) LogLogin(w http.ResponseWriter, r *http.Request) {
	var req logLoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, resultBody{Error: err.Error()})
		return
	}

	if err := h.LoginLog.Append(req.Username); err != nil {
		h.Logger.Error().Err(err).Str("username", req.Username).Msg("failed to write login log")
		writeJSON(w, http.StatusInternalServerError, resultBody{Error: "로그 저장 실패"})
		return
	}

	h.Logger.Info().Str("username", req.Username).Msg("login event saved")
	writeJSON(w, http.StatusOK, resultBody{Success: true, Message: "로그인 기록 저장 완료"})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

// Login confere as credenciais do formulário do mapa e registra o evento.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, resultBody{Error: err.Error()})
		return
	}

	if h.Users == nil || h.Users.Authenticate(req.Username, req.Password) != nil {
		metrics.LoginEvents.WithLabelValues("failure").Inc()
		h.Logger.Info().Str("username", req.Username).Msg("login rejected")
		writeJSON(w, http.StatusUnauthorized, resultBody{Error: "아이디 또는 비밀번호가 올바르지 않습니다"})
		return
	}

	metrics.LoginEvents.WithLabelValues("success").Inc()
	// o registro é best-effort: falha aqui não derruba o login
	if err := h.LoginLog.Append(req.Username); err != nil {
		h.Logger.Warn().Err(err).Str("username", req.Username).Msg("failed to write login log")
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Username: req.Username})
}

var errInvalidBody = errors.New("invalid JSON body")

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	return validation.Struct(dst)
}

// Health responde liveness com o tamanho do catálogo e o estado do contador.
// Circuito aberto não derruba o health: a API segue servindo em fail-open.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok", "records": h.Catalog.Len()}
	if h.CounterState != nil {
		body["counter_breaker"] = h.CounterState()
	}
	writeJSON(w, http.StatusOK, body)
}

type usageResponse struct {
	Date  string           `json:"date"`
	Usage map[string]int64 `json:"usage"`
}

// Usage devolve o agregado diário da auditoria. Só admin.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	v, ok := quota.VerdictFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "quota gate not configured"})
		return
	}
	if v.Role != domain.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Admin API key required"})
		return
	}

	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.Parse(domain.DayLayout, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = d
	}

	usage, err := h.Stats.DailyUsage(r.Context(), day)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("failed to read usage")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "usage unavailable"})
		return
	}
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	writeJSON(w, http.StatusOK, usageResponse{Date: day.Format(domain.DayLayout), Usage: usage})
}
