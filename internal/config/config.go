// Package config loads openhive.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openhive-oss/openhive/internal/errors"
)

// Config is the project configuration (openhive.yaml).
type Config struct {
	Registry RegistryConfig `yaml:"registry" json:"registry"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// RegistryConfig selects and configures the backend adapter.
type RegistryConfig struct {
	Driver string     `yaml:"driver" json:"driver"` // memory, sqlite, remote
	Path   string     `yaml:"path,omitempty" json:"path,omitempty"` // sqlite database file
	URL    string     `yaml:"url,omitempty" json:"url,omitempty"`   // remote registry endpoint
	Auth   AuthConfig `yaml:"auth,omitempty" json:"auth,omitempty"`
}

// AuthConfig holds the remote credential. At most one field should be set.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token,omitempty" json:"bearer_token,omitempty"`
	APIKey      string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	AccessToken string `yaml:"access_token,omitempty" json:"access_token,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text, json
}

// FileName is the configuration file looked up in the working directory.
const FileName = "openhive.yaml"

// Load loads the configuration from dir, returning defaults when no file
// exists.
func Load(dir string) (*Config, error) {
	configFile := filepath.Join(dir, FileName)

	content, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolate environment variables
	content = []byte(interpolateEnv(string(content)))

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, errors.Wrap(errors.CodeConfigInvalid, "failed to parse config", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// interpolateEnv replaces ${env.VAR} and ${VAR} with environment values.
func interpolateEnv(content string) string {
	envPattern := regexp.MustCompile(`\$\{env\.([^}]+)\}`)
	content = envPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // keep original if not found
	})

	varPattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	content = varPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := varPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return content
}

func defaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			Driver: "memory",
			Path:   ".openhive/registry.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Registry.Driver == "" {
		cfg.Registry.Driver = "memory"
	}
	if cfg.Registry.Path == "" {
		cfg.Registry.Path = ".openhive/registry.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func validate(cfg *Config) error {
	var problems []string

	switch cfg.Registry.Driver {
	case "memory", "sqlite", "remote":
	default:
		problems = append(problems, fmt.Sprintf("unsupported registry driver: %s", cfg.Registry.Driver))
	}

	if cfg.Registry.Driver == "remote" && cfg.Registry.URL == "" {
		problems = append(problems, "registry url is required for the remote driver")
	}

	credentials := 0
	for _, c := range []string{cfg.Registry.Auth.BearerToken, cfg.Registry.Auth.APIKey, cfg.Registry.Auth.AccessToken} {
		if c != "" {
			credentials++
		}
	}
	if credentials > 1 {
		problems = append(problems, "at most one of bearer_token, api_key, access_token may be set")
	}

	if len(problems) > 0 {
		return errors.New(errors.CodeConfigInvalid, strings.Join(problems, "; "))
	}
	return nil
}
