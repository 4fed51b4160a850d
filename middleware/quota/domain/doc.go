// Package domain define contratos e tipos de domínio do gateway de quota:
// papéis, credenciais, tabela de quotas, chave do contador diário, veredito e auditoria.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura (Redis, arquivos, métricas).
package domain
