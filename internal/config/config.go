package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Trace exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config holds all configuration for the ordering backend
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int `yaml:"port"`
	ShutdownTimeout int `yaml:"shutdown_timeout_seconds"`
	RequestTimeout  int `yaml:"request_timeout_seconds"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type TelemetryConfig struct {
	Exporter     string `yaml:"exporter"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 10,
			RequestTimeout:  30,
		},
		Storage: StorageConfig{Driver: DriverPostgres},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "restaurant_user",
			Password: "restaurant_pass",
			Database: "restaurant_db",
			SSLMode:  "disable",
			MaxConns: 25,
			MinConns: 5,
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:  true,
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
		},
		Logging:   LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{Exporter: ExporterNone, OTLPEndpoint: "localhost:4317"},
	}
}

// Load reads configuration from a YAML file, then applies environment overrides.
// A missing file is not an error; defaults are used instead.
func Load(filename string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	content, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

// applyEnv overrides file values with any environment variables that are set
func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"STORAGE_DRIVER", &c.Storage.Driver},
		{"DB_HOST", &c.Database.Host},
		{"DB_USER", &c.Database.User},
		{"DB_PASSWORD", &c.Database.Password},
		{"DB_NAME", &c.Database.Database},
		{"DB_SSLMODE", &c.Database.SSLMode},
		{"RABBITMQ_HOST", &c.RabbitMQ.Host},
		{"RABBITMQ_USER", &c.RabbitMQ.User},
		{"RABBITMQ_PASSWORD", &c.RabbitMQ.Password},
		{"LOG_LEVEL", &c.Logging.Level},
		{"OTEL_EXPORTER", &c.Telemetry.Exporter},
		{"OTEL_EXPORTER_OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"HTTP_PORT", &c.Server.Port},
		{"DB_PORT", &c.Database.Port},
		{"RABBITMQ_PORT", &c.RabbitMQ.Port},
	}
	for _, i := range ints {
		v, ok := lookup(i.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", i.key, v, err)
		}
		*i.dst = n
	}

	if v, ok := lookup("RABBITMQ_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RABBITMQ_ENABLED value %q: %w", v, err)
		}
		c.RabbitMQ.Enabled = enabled
	}

	return nil
}

// Validate checks that the configuration can be used to start a service
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	c.Telemetry.Exporter = strings.ToLower(c.Telemetry.Exporter)
	switch c.Telemetry.Exporter {
	case "":
		c.Telemetry.Exporter = ExporterNone
	case ExporterNone, ExporterStdout, ExporterOTLP:
	default:
		return fmt.Errorf("unknown telemetry exporter: %s", c.Telemetry.Exporter)
	}

	for name, port := range map[string]int{
		"server.port":   c.Server.Port,
		"database.port": c.Database.Port,
		"rabbitmq.port": c.RabbitMQ.Port,
	} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port value for %s: %d", name, port)
		}
	}

	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database, sslMode)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
