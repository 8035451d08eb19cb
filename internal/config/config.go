package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/messaging"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/telemetry"
)

// Config is the full process configuration.
type Config struct {
	HTTP      HTTPConfig       `envPrefix:"HTTP_" yaml:"http"`
	Log       LogConfig        `envPrefix:"LOG_" yaml:"log"`
	Datastore datastore.Config `envPrefix:"DATASTORE_" yaml:"datastore"`
	Messaging messaging.Config `envPrefix:"RABBITMQ_" yaml:"messaging"`
	Telemetry telemetry.Config `envPrefix:"OTEL_" yaml:"telemetry"`
}

type HTTPConfig struct {
	Addr           string   `env:"ADDR" envDefault:":8080" yaml:"addr"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000" yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info" yaml:"level"`
	Format string `env:"FORMAT" envDefault:"json" yaml:"format"` // json or console
}

// Load reads configuration from the environment. When CONFIG_FILE names a
// YAML file, keys present in the file override the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Logger builds the process logger. Format "console" writes human-readable
// lines; anything else writes JSON.
func (c LogConfig) Logger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if c.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
