package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const testConfig = `
server:
  port: 8081
  read_timeout: 5s
database:
  host: db
  port: 5432
  retry:
    max_attempts: 3
kafka:
  topic: entries
  listeners: "k1:9092, k2:9092,"
cache:
  capacity: 2
log:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("error: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	if cfg.Server.Port != 8081 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("error: server section parsed incorrectly: %+v", cfg.Server)
	}
	if cfg.Database.Host != "db" || cfg.Database.Retry.MaxAttempts != 3 {
		t.Errorf("error: database section parsed incorrectly: %+v", cfg.Database)
	}
	if cfg.Cache.Capacity != 2 {
		t.Errorf("error: expected capacity 2, got %d", cfg.Cache.Capacity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("error: expected valid config, got %v", err)
	}
	if cfg.GetServerAddress() != ":8081" {
		t.Errorf("error: unexpected address %s", cfg.GetServerAddress())
	}
	if cfg.GetLogLevel() != zerolog.DebugLevel {
		t.Errorf("error: expected debug level, got %v", cfg.GetLogLevel())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Errorf("error: expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "server: [")); err == nil {
		t.Errorf("error: expected error for broken yaml")
	}
}

func TestConfig_LoadEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "user")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "kv")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := &Config{Database: DatabaseConfig{Host: "h", Port: 1, SSLMode: "disable"}}
	cfg.loadEnv(filepath.Join(t.TempDir(), "absent.env"))

	want := "postgres://user:secret@h:1/kv?sslmode=disable"
	if got := cfg.GetDatabaseURL(); got != want {
		t.Errorf("error: got %s, want %s", got, want)
	}
}

func TestConfig_GetBrokers(t *testing.T) {
	cfg := &Config{Kafka: KafkaConfig{Listeners: " k1:9092, k2:9092,,"}}
	if got := cfg.GetBrokers(); !slices.Equal(got, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("error: unexpected brokers %v", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Host: "db", Port: 5432},
			Kafka:    KafkaConfig{Topic: "entries"},
			Cache:    CacheConfig{Capacity: 10},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad database port", func(c *Config) { c.Database.Port = 0 }},
		{"empty host", func(c *Config) { c.Database.Host = "" }},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero capacity", func(c *Config) { c.Cache.Capacity = 0 }},
		{"negative capacity", func(c *Config) { c.Cache.Capacity = -1 }},
		{"empty topic", func(c *Config) { c.Kafka.Topic = " " }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("error expected")
			}
		})
	}

	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Errorf("error: %v", err)
	}
}
