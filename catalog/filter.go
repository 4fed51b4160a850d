package catalog

import "strings"

// Criteria são filtros opcionais por igualdade; campo vazio não filtra.
//
// Franquia, status e região comparam sem diferenciar maiúsculas/minúsculas.
// Registro sem região conta como "".
type Criteria struct {
	Franchise string
	Status    string
	Region    string
}

func (c Criteria) Empty() bool {
	return c.Franchise == "" && c.Status == "" && c.Region == ""
}

func (c Criteria) Match(r Record) bool {
	if c.Franchise != "" && !strings.EqualFold(r.FranchiseName, c.Franchise) {
		return false
	}
	if c.Status != "" && !strings.EqualFold(r.Status, c.Status) {
		return false
	}
	if c.Region != "" && !strings.EqualFold(r.Region, c.Region) {
		return false
	}
	return true
}

// Filter devolve os registros que batem com todos os critérios, na ordem do catálogo.
func Filter(records []Record, c Criteria) []Record {
	if c.Empty() {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
