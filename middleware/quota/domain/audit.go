package domain

import (
	"context"
	"time"
)

// AuditEvent é o registro de auditoria emitido em toda decisão do gateway
// (exceto quando o servidor não tem nenhuma chave configurada).
//
// Key já vem mascarada (ver Redact); a credencial completa nunca entra aqui.
type AuditEvent struct {
	At      time.Time
	IP      string
	Key     string
	Role    Role
	Outcome Outcome

	Franchise string
	Status    string
	Region    string

	Used      int64
	Remaining int64
}

// AuditSink é a estratégia de persistência da auditoria.
//
// Implementações podem escrever em log, Redis, memória, etc.
// Quem chama trata erro como best-effort (não derruba request).
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent) error
}

// UsageReader lê o agregado diário da auditoria: "role:outcome" -> contagem.
type UsageReader interface {
	DailyUsage(ctx context.Context, day time.Time) (map[string]int64, error)
}
