package application

import "poi-gateway/middleware/quota/domain"

// DefaultQuotas devolve os limites diários padrão por papel.
func DefaultQuotas() domain.QuotaTable {
	return domain.QuotaTable{
		domain.RoleAdmin:              {Unlimited: true},
		domain.RoleTeamPark:           {Limit: 200},
		domain.RoleTeamDynamic:        {Limit: 500},
		domain.RoleTeamPOI:            {Limit: 500},
		domain.RoleTeamDigitalDisplay: {Limit: 200},
	}
}

// Policy decide allow/deny a partir do valor do contador.
type Policy struct {
	Quotas domain.QuotaTable
}

// Quota devolve a quota do papel. Papel sem entrada na tabela é tratado como ilimitado.
func (p Policy) Quota(role domain.Role) domain.Quota {
	q, ok := p.Quotas[role]
	if !ok {
		return domain.Quota{Unlimited: true}
	}
	return q
}

// Evaluate aplica exceeded = used > limit (a N-ésima chamada ainda passa, a N+1 não)
// e remaining = max(0, limit - used).
func (p Policy) Evaluate(role domain.Role, used int64) domain.Evaluation {
	q := p.Quota(role)
	if q.Unlimited {
		return domain.Evaluation{Used: used, Unlimited: true}
	}
	remaining := q.Limit - used
	if remaining < 0 {
		remaining = 0
	}
	return domain.Evaluation{
		Used:      used,
		Remaining: remaining,
		Exceeded:  used > q.Limit,
	}
}
