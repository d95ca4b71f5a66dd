// Package config provides configuration management for kaosdraw.
// Settings come from defaults, an optional YAML file and environment
// variables with the KAOSDRAW_ prefix, in increasing order of precedence.
// Nested keys map to variables by replacing dots with underscores, so
// server.port is read from KAOSDRAW_SERVER_PORT.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by LoadConfig.
const EnvPrefix = "KAOSDRAW"

// ErrInvalidConfig is returned when a loaded setting is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration settings for kaosdraw.
type Config struct {
	Server   ServerConfig
	History  HistoryConfig
	Logic    LogicConfig
	Evaluate EvaluateConfig
	Log      LogConfig
	Model    ModelConfig
}

// ServerConfig contains preview server configuration.
type ServerConfig struct {
	Port      int     // Server port (default: 6464)
	Host      string  // Server host (default: 127.0.0.1)
	RateLimit float64 // Requests per second per client (default: 20)
	RateBurst int     // Burst size per client (default: 40)
}

// HistoryConfig bounds undo history.
type HistoryConfig struct {
	MaxEntries int // Undo snapshots kept (default: 50)
}

// LogicConfig limits logic synthesis.
type LogicConfig struct {
	MaxDepth int // Maximum refinement depth (default: 64)
	MaxNodes int // Maximum item visits per synthesis (default: 10000)
}

// EvaluateConfig contains evaluator defaults.
type EvaluateConfig struct {
	Threshold    float64 // Satisfaction threshold (default: 0.5)
	ShortCircuit bool    // Stop AND/OR once decided (default: false)
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string // debug, info, warn, error (default: info)
	Format string // console or json (default: console)
}

// ModelConfig holds defaults for new models.
type ModelConfig struct {
	Identifier string // Identifier given to new models (default: M1)
}

var defaults = map[string]any{
	"server.port":            6464,
	"server.host":            "127.0.0.1",
	"server.rate_limit":      20.0,
	"server.rate_burst":      40,
	"history.max_entries":    50,
	"logic.max_depth":        64,
	"logic.max_nodes":        10000,
	"evaluate.threshold":     0.5,
	"evaluate.short_circuit": false,
	"log.level":              "info",
	"log.format":             "console",
	"model.identifier":       "M1",
}

// LoadConfig loads configuration from environment variables with sensible defaults.
func LoadConfig() (*Config, error) {
	return load(newViper())
}

// LoadConfigFile loads configuration from a YAML file, with environment
// variables taking precedence over file values.
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetInt("server.port"),
			Host:      v.GetString("server.host"),
			RateLimit: v.GetFloat64("server.rate_limit"),
			RateBurst: v.GetInt("server.rate_burst"),
		},
		History: HistoryConfig{
			MaxEntries: v.GetInt("history.max_entries"),
		},
		Logic: LogicConfig{
			MaxDepth: v.GetInt("logic.max_depth"),
			MaxNodes: v.GetInt("logic.max_nodes"),
		},
		Evaluate: EvaluateConfig{
			Threshold:    v.GetFloat64("evaluate.threshold"),
			ShortCircuit: v.GetBool("evaluate.short_circuit"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Model: ModelConfig{
			Identifier: v.GetString("model.identifier"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is within range.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RateLimit <= 0 {
		problems = append(problems, "server.rate_limit must be positive")
	}
	if c.Server.RateBurst <= 0 {
		problems = append(problems, "server.rate_burst must be positive")
	}
	if c.History.MaxEntries <= 0 {
		problems = append(problems, "history.max_entries must be positive")
	}
	if c.Evaluate.Threshold < 0 || c.Evaluate.Threshold > 1 {
		problems = append(problems, fmt.Sprintf("evaluate.threshold %g outside [0, 1]", c.Evaluate.Threshold))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not console or json", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
