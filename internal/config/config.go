// Package config holds the settings shared by the makespan commands and the
// HTTP server. Values come from built-in defaults, an optional YAML file and
// MAKESPAN_* environment variables, in increasing priority; command-line
// flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Solve  SolveConfig  `yaml:"solve"`
	Batch  BatchConfig  `yaml:"batch"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// SolveConfig controls how a single instance is solved.
type SolveConfig struct {
	Mode    string        `yaml:"mode"`    // heuristic, optimal, compare
	Order   string        `yaml:"order"`   // lpt, id
	Timeout time.Duration `yaml:"timeout"` // 0 means no bound on the optimal search
}

// BatchConfig tunes the concurrent solver.
type BatchConfig struct {
	Workers int     `yaml:"workers"` // 0 means GOMAXPROCS
	Buffer  int     `yaml:"buffer"`
	Rate    float64 `yaml:"rate"` // instances per second, 0 disables limiting
	Burst   int     `yaml:"burst"`
	Pin     bool    `yaml:"pin"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	MaxTasks      int    `yaml:"max_tasks"`
	MaxProcessors int    `yaml:"max_processors"`
}

// StoreConfig locates the run archive. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Solve: SolveConfig{
			Mode:  "compare",
			Order: "lpt",
		},
		Batch: BatchConfig{
			Burst: 1,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			MaxTasks:      64,
			MaxProcessors: 1024,
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from MAKESPAN_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("MAKESPAN_LOG_LEVEL", &c.Log.Level)
	str("MAKESPAN_LOG_FORMAT", &c.Log.Format)
	str("MAKESPAN_MODE", &c.Solve.Mode)
	str("MAKESPAN_ORDER", &c.Solve.Order)
	str("MAKESPAN_ADDR", &c.Server.Addr)
	str("MAKESPAN_DB", &c.Store.Path)

	if v, ok := lookup("MAKESPAN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MAKESPAN_TIMEOUT: %w", err)
		}
		c.Solve.Timeout = d
	}
	for _, e := range []struct {
		key string
		dst *int
	}{
		{"MAKESPAN_WORKERS", &c.Batch.Workers},
		{"MAKESPAN_MAX_TASKS", &c.Server.MaxTasks},
		{"MAKESPAN_MAX_PROCESSORS", &c.Server.MaxProcessors},
	} {
		v, ok := lookup(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}
	return nil
}

// Validate checks the enumerated and numeric fields.
func (c Config) Validate() error {
	var errs []error

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	switch c.Solve.Mode {
	case "heuristic", "optimal", "compare":
	default:
		errs = append(errs, fmt.Errorf("solve.mode: unknown mode %q", c.Solve.Mode))
	}
	switch c.Solve.Order {
	case "lpt", "id":
	default:
		errs = append(errs, fmt.Errorf("solve.order: unknown order %q", c.Solve.Order))
	}
	if c.Solve.Timeout < 0 {
		errs = append(errs, fmt.Errorf("solve.timeout: must not be negative"))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch.workers: must not be negative"))
	}
	if c.Server.MaxTasks < 1 {
		errs = append(errs, fmt.Errorf("server.max_tasks: must be positive"))
	}
	if c.Server.MaxProcessors < 1 {
		errs = append(errs, fmt.Errorf("server.max_processors: must be positive"))
	}
	if c.Batch.Rate < 0 {
		errs = append(errs, fmt.Errorf("batch.rate: must not be negative"))
	}

	return errors.Join(errs...)
}
