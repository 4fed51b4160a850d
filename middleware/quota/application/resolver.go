package application

import "poi-gateway/middleware/quota/domain"

// Secrets são os segredos configurados no servidor, um por papel.
// Segredo vazio significa papel inalcançável.
type Secrets struct {
	Admin              string
	TeamPark           string
	TeamDynamic        string
	TeamPOI            string
	TeamDigitalDisplay string
}

// Binding associa um segredo a um papel.
type Binding struct {
	Secret string
	Role   domain.Role
}

// Bindings devolve os segredos não vazios, na ordem de registro.
func (s Secrets) Bindings() []Binding {
	all := []Binding{
		{Secret: s.Admin, Role: domain.RoleAdmin},
		{Secret: s.TeamPark, Role: domain.RoleTeamPark},
		{Secret: s.TeamDynamic, Role: domain.RoleTeamDynamic},
		{Secret: s.TeamPOI, Role: domain.RoleTeamPOI},
		{Secret: s.TeamDigitalDisplay, Role: domain.RoleTeamDigitalDisplay},
	}
	out := all[:0]
	for _, b := range all {
		if b.Secret != "" {
			out = append(out, b)
		}
	}
	return out
}

// Resolver mapeia credencial -> papel a partir de uma tabela estática.
// A tabela é montada uma vez e nunca muda.
type Resolver struct {
	table map[domain.Credential]domain.Role
}

// NewResolver monta a tabela. Se dois papéis compartilham o mesmo segredo,
// o último binding vence.
func NewResolver(bindings []Binding) *Resolver {
	table := make(map[domain.Credential]domain.Role, len(bindings))
	for _, b := range bindings {
		if b.Secret == "" {
			continue
		}
		table[domain.Credential(b.Secret)] = b.Role
	}
	return &Resolver{table: table}
}

// Configured informa se existe ao menos um segredo no servidor.
func (r *Resolver) Configured() bool {
	return r != nil && len(r.table) > 0
}

// Resolve compara por igualdade exata (sem trim, sem normalização).
func (r *Resolver) Resolve(cred domain.Credential) (domain.Role, bool) {
	if r == nil || cred == "" {
		return "", false
	}
	role, ok := r.table[cred]
	return role, ok
}
