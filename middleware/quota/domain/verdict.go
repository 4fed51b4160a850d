package domain

// Outcome é o estado terminal de uma autorização.
type Outcome string

const (
	OutcomeAllowed             Outcome = "allowed"
	OutcomeUnauthorized        Outcome = "unauthorized"
	OutcomeQuotaExceeded       Outcome = "quota_exceeded"
	OutcomeServerMisconfigured Outcome = "server_misconfigured"
)

// Request é a visão de uma chamada à API sem nada de HTTP.
type Request struct {
	Credential Credential
	ClientIP   string

	// filtros pedidos, só para auditoria
	Franchise string
	Status    string
	Region    string
}

// Verdict é o resultado de Service.Authorize. Não é persistido.
type Verdict struct {
	Outcome Outcome
	Role    Role

	Used      int64
	Remaining int64
	Limit     int64
	// Unlimited indica Remaining infinito (papel sem limite).
	Unlimited bool
	// Degraded indica fail-open: o contador estava indisponível e a chamada passou sem contar.
	Degraded bool
}

func (v Verdict) Allowed() bool { return v.Outcome == OutcomeAllowed }
