// Package logging constrói o logger zerolog do gateway.
//
// JSON em produção, console em desenvolvimento:
//
//	log := logging.New(logging.Config{Level: "info", Format: "json"})
//	log.Info().Str("addr", addr).Msg("gateway listening")
//
// Sempre termine a cadeia com .Msg() ou .Send(), senão nada é emitido.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	// Level: trace, debug, info, warn, error. Padrão: info
	Level string
	// Format: json ou console. Padrão: json
	Format string
	// Output padrão: os.Stderr
	Output io.Writer
}

// New devolve um logger configurado. Não mexe no logger global do zerolog.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "poi-gateway").
		Logger()
}

// ParseLevel converte o texto em zerolog.Level; desconhecido vira info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
