package domain

// Role é a categoria de quem chama a API (admin ou um time).
type Role string

const (
	RoleAdmin              Role = "admin"
	RoleTeamPark           Role = "team_park"
	RoleTeamDynamic        Role = "team_dynamic"
	RoleTeamPOI            Role = "team_poi"
	RoleTeamDigitalDisplay Role = "team_digital_display"

	// RoleInvalid aparece apenas em auditoria, quando a credencial não resolveu.
	RoleInvalid Role = "INVALID"
)

// Credential é o segredo opaco apresentado pelo cliente.
type Credential string

const redactVisible = 4

// Redact devolve uma forma segura para log: 4 primeiros caracteres + máscara.
// Credencial vazia vira "NO_KEY".
func Redact(c Credential) string {
	s := string(c)
	if s == "" {
		return "NO_KEY"
	}
	n := 0
	for i := range s {
		if n == redactVisible {
			return s[:i] + "***"
		}
		n++
	}
	return s + "***"
}
