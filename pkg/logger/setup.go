package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/healthdata-loader/pkg/config"
	"github.com/rs/zerolog"
)

// Configure inicializa o logger global baseando-se na configuração do YAML.
func Configure(cfg config.LoggingConf, service string) zerolog.Logger {
	return New(cfg, service, os.Stdout)
}

// New cria o logger escrevendo em out. O nível é aplicado globalmente.
func New(cfg config.LoggingConf, service string, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = out
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	return ctx.Logger()
}
