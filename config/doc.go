// Package config carrega a configuração do gateway em três camadas (koanf):
//
//  1. valores padrão (struct)
//  2. arquivo YAML opcional (CONFIG_PATH, config.yaml ou /etc/poi-gateway/config.yaml)
//  3. variáveis de ambiente (maior prioridade)
//
// Os nomes das variáveis dos segredos fazem parte do contrato externo e não mudam:
// API_SECRET_KEY, API_KEY_TEAM_PARK, API_KEY_TEAM_DNM, API_KEY_TEAM_POI e API_KEY_TEAM_DGD.
// Segredo ausente só deixa o papel inalcançável; sem nenhum segredo o gateway sobe
// e responde 500 em /api/franchise.
package config
