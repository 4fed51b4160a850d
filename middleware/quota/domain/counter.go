package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrStoreUnavailable indica que o contador externo não respondeu.
// Nunca chega ao cliente: o gateway trata como fail-open.
var ErrStoreUnavailable = errors.New("counter store unavailable")

// DayLayout é o formato da data UTC usada na chave do contador.
const DayLayout = "2006-01-02"

// CounterStore é o contrato mínimo sobre um serviço de contador atômico com expiração.
//
// Incr deve ser atômico no próprio store (ex: INCR do Redis). Implementações não podem
// fazer leitura-seguida-de-escrita, senão a corrida volta.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// CounterKey monta a chave determinística namespace:role:credential:YYYY-MM-DD.
// Dois processos contando a mesma tripla (papel, credencial, dia UTC) convergem na mesma chave.
func CounterKey(namespace string, role Role, cred Credential, day time.Time) string {
	var b strings.Builder
	b.Grow(len(namespace) + len(role) + len(cred) + len(DayLayout) + 3)
	b.WriteString(namespace)
	b.WriteByte(':')
	b.WriteString(string(role))
	b.WriteByte(':')
	b.WriteString(string(cred))
	b.WriteByte(':')
	b.WriteString(day.UTC().Format(DayLayout))
	return b.String()
}
