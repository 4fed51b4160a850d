package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths são procurados em ordem quando CONFIG_PATH não está definido.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/poi-gateway/config.yaml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

// envKeys mapeia variáveis de ambiente -> chaves koanf.
// Variáveis fora do mapa são ignoradas.
var envKeys = map[string]string{
	// segredos (nomes fixos do contrato externo)
	"API_SECRET_KEY":    "keys.admin",
	"API_KEY_TEAM_PARK": "keys.team_park",
	"API_KEY_TEAM_DNM":  "keys.team_dynamic",
	"API_KEY_TEAM_POI":  "keys.team_poi",
	"API_KEY_TEAM_DGD":  "keys.team_digital_display",

	"LISTEN_ADDR":           "server.listen_addr",
	"CONCURRENCY_MAX":       "server.concurrency_max",
	"CONCURRENCY_TIMEOUT":   "server.concurrency_timeout",
	"TRUST_XFF":             "server.trust_xff",
	"ADD_RATELIMIT_HEADERS": "server.ratelimit_headers",
	"CORS_ALLOWED_ORIGINS":  "server.cors_allowed_origins",
	"SHUTDOWN_TIMEOUT":      "server.shutdown_timeout",

	"QUOTA_NAMESPACE":            "quota.namespace",
	"QUOTA_WINDOW_TTL":           "quota.window_ttl",
	"QUOTA_TEAM_PARK":            "quota.team_park",
	"QUOTA_TEAM_DNM":             "quota.team_dynamic",
	"QUOTA_TEAM_POI":             "quota.team_poi",
	"QUOTA_TEAM_DGD":             "quota.team_digital_display",
	"COUNTER_BACKEND":            "counter.backend",
	"COUNTER_BREAKER_FAILURES":   "counter.breaker_failures",
	"COUNTER_BREAKER_OPEN_AFTER": "counter.breaker_open_timeout",

	"REDIS_URL":      "redis.url",
	"REDIS_ADDR":     "redis.addr",
	"REDIS_PASSWORD": "redis.password",
	"REDIS_DB":       "redis.db",

	"AUDIT_REDIS_STATS": "audit.redis_stats",
	"AUDIT_PREFIX":      "audit.prefix",
	"AUDIT_TTL":         "audit.ttl",
	"AUDIT_TRACK_KEYS":  "audit.track_keys",

	"CATALOG_SOURCE":        "catalog.source",
	"CATALOG_FETCH_TIMEOUT": "catalog.fetch_timeout",
	"LOGIN_LOG_DIR":         "login_log.dir",
	"LOGIN_THROTTLE_RPS":    "login.throttle_rps",
	"LOGIN_THROTTLE_BURST":  "login.throttle_burst",

	"LOG_LEVEL":  "logging.level",
	"LOG_FORMAT": "logging.format",
}

// envTransformFunc ignora variáveis fora do mapa e variáveis vazias,
// para que "FOO=" não apague o valor padrão.
func envTransformFunc(key, value string) (string, any) {
	if value == "" {
		return "", nil
	}
	return envKeys[key], value
}

// Load monta a configuração: defaults -> arquivo -> env, e valida.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile é como Load, mas com o arquivo explícito ("" = sem arquivo).
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Server.CORSAllowedOrigins = splitList(cfg.Server.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitList limpa espaços e itens vazios (valores vindos de "a, b,").
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
