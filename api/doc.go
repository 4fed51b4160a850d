// Package api monta o roteador chi do gateway e os handlers HTTP:
//
//	GET  /api/franchise   dados do catálogo (chave de API + quota diária)
//	POST /api/log-login   grava um evento de login (best-effort)
//	POST /api/login       confere usuário/senha e grava o evento de login
//	GET  /healthz         liveness
//	GET  /metrics         Prometheus
package api
