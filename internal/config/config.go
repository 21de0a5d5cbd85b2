package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the server configuration, loaded from an optional YAML file
// with environment variable overrides.
type Config struct {
	Address     string        `yaml:"address" env:"TASKBOARD_ADDRESS" env-default:":3000"`
	DBPath      string        `yaml:"db_path" env:"TASKBOARD_DB_PATH" env-default:"taskmanagement.db" validate:"required"`
	LogLevel    string        `yaml:"log_level" env:"TASKBOARD_LOG_LEVEL" env-default:"info" validate:"oneof=trace debug info warn error"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"TASKBOARD_HTTP_TIMEOUT" env-default:"15s"`
}

// Load reads the configuration from path, falling back to environment
// variables alone when the file does not exist. The loaded config is
// validated before being returned.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env config: %w", err)
		}
		return cfg, validate(cfg)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return Config{}, fmt.Errorf("read env config: %w", err)
			}
			return cfg, validate(cfg)
		}
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
