package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "makespan.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Server.MaxTasks != 64 || cfg.Server.MaxProcessors != 1024 {
		t.Errorf("unexpected server limits: %+v", cfg.Server)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
solve:
  mode: optimal
  order: id
  timeout: 2s
batch:
  workers: 3
  rate: 50
  burst: 5
  pin: true
store:
  path: runs.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Solve.Mode != "optimal" || cfg.Solve.Order != "id" {
		t.Errorf("unexpected solve config: %+v", cfg.Solve)
	}
	if cfg.Solve.Timeout != 2*time.Second {
		t.Errorf("expected timeout 2s, got %v", cfg.Solve.Timeout)
	}
	if cfg.Batch.Workers != 3 || cfg.Batch.Rate != 50 || cfg.Batch.Burst != 5 || !cfg.Batch.Pin {
		t.Errorf("unexpected batch config: %+v", cfg.Batch)
	}
	if cfg.Store.Path != "runs.db" {
		t.Errorf("expected store path runs.db, got %q", cfg.Store.Path)
	}
	// untouched sections keep their defaults
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "bad yaml", body: "log: [", want: "parse config"},
		{name: "bad mode", body: "solve:\n  mode: fastest\n", want: "solve.mode"},
		{name: "bad format", body: "log:\n  format: xml\n", want: "log.format"},
		{name: "negative workers", body: "batch:\n  workers: -2\n", want: "batch.workers"},
		{name: "zero max processors", body: "server:\n  max_processors: 0\n", want: "server.max_processors"},
		{name: "negative max tasks", body: "server:\n  max_tasks: -1\n", want: "server.max_tasks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MAKESPAN_LOG_LEVEL", "warn")
	t.Setenv("MAKESPAN_MODE", "heuristic")
	t.Setenv("MAKESPAN_DB", ":memory:")
	t.Setenv("MAKESPAN_WORKERS", "8")
	t.Setenv("MAKESPAN_TIMEOUT", "150ms")
	t.Setenv("MAKESPAN_MAX_PROCESSORS", "16")

	path := writeConfig(t, "solve:\n  mode: optimal\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("expected level warn, got %q", cfg.Log.Level)
	}
	if cfg.Solve.Mode != "heuristic" {
		t.Errorf("expected env to win over file, got mode %q", cfg.Solve.Mode)
	}
	if cfg.Store.Path != ":memory:" {
		t.Errorf("expected store path from env, got %q", cfg.Store.Path)
	}
	if cfg.Batch.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Batch.Workers)
	}
	if cfg.Solve.Timeout != 150*time.Millisecond {
		t.Errorf("expected 150ms timeout, got %v", cfg.Solve.Timeout)
	}
	if cfg.Server.MaxProcessors != 16 {
		t.Errorf("expected 16 max processors, got %d", cfg.Server.MaxProcessors)
	}
}

func TestApplyEnv_BadNumbers(t *testing.T) {
	tests := map[string]string{
		"MAKESPAN_WORKERS": "many",
		"MAKESPAN_TIMEOUT": "soon",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			lookup := func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			}
			err := cfg.applyEnv(lookup)
			if err == nil || !strings.Contains(err.Error(), key) {
				t.Errorf("expected error naming %s, got %v", key, err)
			}
		})
	}
}
