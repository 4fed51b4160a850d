// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - RedisCounterStore: INCR/EXPIRE no Redis (contador diário por papel+credencial)
//   - BreakerCounterStore: circuit breaker (sony/gobreaker) na frente do contador
//   - MemoryCounterStore: contador em memória para um único processo
//   - LogAuditSink / RedisAuditStore / MemoryAuditStore: auditoria das chamadas
//   - Store: token bucket por chave usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
package infra
