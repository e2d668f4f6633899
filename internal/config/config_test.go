// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Training.MinSamples != 10 {
		t.Errorf("Training.MinSamples = %d, want 10", cfg.Training.MinSamples)
	}
	if cfg.Training.ImprovementThreshold != 0.05 {
		t.Errorf("Training.ImprovementThreshold = %v, want 0.05", cfg.Training.ImprovementThreshold)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Scheduler.Cooldown != 5*time.Minute {
		t.Errorf("Scheduler.Cooldown = %v, want 5m", cfg.Scheduler.Cooldown)
	}
	if cfg.Events.Topic != "model.lifecycle" {
		t.Errorf("Events.Topic = %q", cfg.Events.Topic)
	}
}

func TestLoadFile_LayersFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
scheduler:
  time_of_day: "04:30"
cache:
  ttl: 10m
training:
  seed: 7
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TRAINING_SEED", "99")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Scheduler.TimeOfDay != "04:30" {
		t.Errorf("TimeOfDay = %q, want 04:30 from file", cfg.Scheduler.TimeOfDay)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache.TTL = %v, want 10m from file", cfg.Cache.TTL)
	}
	if cfg.Training.Seed != 99 {
		t.Errorf("Training.Seed = %d, want 99 from env", cfg.Training.Seed)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Training.MinSamples != 10 {
		t.Errorf("Training.MinSamples = %d, want default 10", cfg.Training.MinSamples)
	}
}

func TestLoadFile_InvalidFails(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := LoadFile("")
	if err == nil || !strings.Contains(err.Error(), "CACHE_BACKEND") {
		t.Fatalf("err = %v, want CACHE_BACKEND validation error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad time", func(c *Config) { c.Scheduler.TimeOfDay = "25:00" }, "SCHEDULER_TIME_OF_DAY"},
		{"bad fraction", func(c *Config) { c.Training.TestFraction = 1 }, "test_fraction"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.RedisAddr = "" }, "REDIS_ADDR"},
		{"unknown registry", func(c *Config) { c.Registry.Backend = "sagemaker" }, "REGISTRY_BACKEND"},
		{"minio without endpoint", func(c *Config) { c.Artifacts.Backend = "minio" }, "MINIO_ENDPOINT"},
		{"no store path", func(c *Config) { c.Store.Path = "" }, "DUCKDB_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestClockTime(t *testing.T) {
	h, m, err := SchedulerConfig{TimeOfDay: "07:05"}.ClockTime()
	if err != nil || h != 7 || m != 5 {
		t.Errorf("ClockTime() = %d, %d, %v", h, m, err)
	}
	if _, _, err := (SchedulerConfig{TimeOfDay: "7am"}).ClockTime(); err == nil {
		t.Error("expected error for 7am")
	}
}
