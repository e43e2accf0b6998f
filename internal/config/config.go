package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// A Config represents all configuration of service
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	Kafka          KafkaConfig          `yaml:"kafka"`
	Cache          CacheConfig          `yaml:"cache"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Log            LogConfig            `yaml:"log"`
}

// A ServerConfig contains configurations for HTTP server
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// A DatabaseConfig contains settings for Postgres
type DatabaseConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string
	Password           string
	Database           string
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConnections int           `yaml:"max_open_connections"`
	MinOpenConnections int           `yaml:"min_open_connections"`
	MinIdleConnections int           `yaml:"min_idle_connections"`
	HealthCheckPeriod  time.Duration `yaml:"health_check_period"`
	Retry              RetryConfig   `yaml:"retry"`
}

// A KafkaConfig contains settings for Kafka
type KafkaConfig struct {
	Topic     string `yaml:"topic"`
	GroupID   string `yaml:"group_id"`
	Listeners string `yaml:"listeners"`
}

// A CacheConfig represents settings for cache
type CacheConfig struct {
	Capacity int  `yaml:"capacity"`
	Warm     bool `yaml:"warm"`
}

// A RetryConfig represents retry configurations
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

// A CircuitBreakerConfig represents circuit breaker configurations
type CircuitBreakerConfig struct {
	MaxFailers       int           `yaml:"max_failers"`
	Timeout          time.Duration `yaml:"timeout"`
	HalfOpenMaxCalls int           `yaml:"half_open_max_calls"`
}

// A LogConfig represents logger settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig loads data into Config structure from a file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.loadEnv("deployments/.env")
	return &config, nil
}

// loadEnv loads data into Config structure from the environmental variables
func (c *Config) loadEnv(envPath string) {
	// a missing file is fine, the variables may already be exported
	_ = godotenv.Load(envPath)

	if v := os.Getenv("POSTGRES_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		c.Database.Database = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Listeners = v
	}
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// GetDatabaseURL builds a postgres connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s", c.Database.User, c.Database.Password,
		c.Database.Host, c.Database.Port, c.Database.Database, c.Database.SSLMode,
	)
}

// GetBrokers splits the comma separated listeners
func (c *Config) GetBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.Kafka.Listeners, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// GetLogLevel parses the configured level, info by default
func (c *Config) GetLogLevel() zerolog.Level {
	if c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Validate checks if the most important fields are properly filled
func (c *Config) Validate() error {
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.Host == "" {
		return errors.New("database host is requested")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Cache.Capacity <= 0 {
		return errors.New("cache capacity must be positive")
	}
	if strings.TrimSpace(c.Kafka.Topic) == "" {
		return errors.New("kafka topic is requested")
	}
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
	}

	return nil
}
