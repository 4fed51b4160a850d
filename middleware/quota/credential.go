package quota

import (
	"net"
	"net/http"
	"strings"

	"poi-gateway/middleware/quota/domain"
)

const (
	CredentialQueryParam = "key"
	CredentialHeader     = "x-api-key"
)

type CredentialFunc func(r *http.Request) domain.Credential

// CredentialFromRequest lê a credencial da query e, se vazia, do header.
// Quando os dois vêm preenchidos a query vence.
func CredentialFromRequest(r *http.Request) domain.Credential {
	if v := r.URL.Query().Get(CredentialQueryParam); v != "" {
		return domain.Credential(v)
	}
	return domain.Credential(r.Header.Get(CredentialHeader))
}

// ClientIP devolve o primeiro IP do X-Forwarded-For, ou "unknown".
// Serve só para auditoria; não é usado em nenhuma decisão.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return "unknown"
}

type KeyFunc func(r *http.Request) string

// DefaultKeyFunc devolve a chave do throttle: primeiro IP do XFF (se confiável)
// ou o host de RemoteAddr.
func DefaultKeyFunc(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			if ip := ClientIP(r); ip != "unknown" {
				return ip
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}
