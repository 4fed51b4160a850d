// Package quota fornece adapters HTTP (net/http) para o gateway de quota diária,
// o throttle por IP e o limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (resolver, política, Service.Authorize) sem net/http
//   - infra: implementações concretas (Redis, circuit breaker, token bucket, semáforo)
//   - quota (este pacote): middlewares HTTP + extração de credencial/IP + tradução para status/JSON
//
// Fluxo em GET /api/franchise:
//
//  1. Extrai a credencial (query "key", depois header "x-api-key")
//  2. Chama Service.Authorize para obter o veredito
//  3. 500 sem chaves no servidor, 401 credencial inválida, 429 quota estourada
//  4. Se permitido, guarda o veredito no contexto e chama o próximo handler
package quota
