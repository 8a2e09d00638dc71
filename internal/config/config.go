package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport kinds
const (
	TransportHTTP  = "http"
	TransportQueue = "queue"
)

// Config holds all configuration for the task bridge
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Integration IntegrationConfig `yaml:"integration"`
	Transport   TransportConfig   `yaml:"transport"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// IntegrationConfig is the point of sale side of the bridge.
// ProjectID stays untyped: it may be a number, a string or an [id, name] pair.
type IntegrationConfig struct {
	Enabled   bool   `yaml:"enabled"`
	ProjectID any    `yaml:"project_id"`
	Locale    string `yaml:"locale"`
	Reprint   bool   `yaml:"reprint"`
}

// TransportConfig selects how payloads reach the task board
type TransportConfig struct {
	Kind    string        `yaml:"kind"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used for unset values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "taskbridge",
			Database: "taskbridge",
		},
		RabbitMQ: RabbitMQConfig{
			Host: "localhost",
			Port: 5672,
			User: "guest",
		},
		Integration: IntegrationConfig{
			Enabled: true,
			Locale:  "en",
			Reprint: true,
		},
		Transport: TransportConfig{
			Kind:    TransportHTTP,
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file on top of the defaults and
// applies TASKBRIDGE_* environment overrides
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv sets values from environment variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TASKBRIDGE_DB_HOST":           &c.Database.Host,
		"TASKBRIDGE_DB_USER":           &c.Database.User,
		"TASKBRIDGE_DB_PASSWORD":       &c.Database.Password,
		"TASKBRIDGE_DB_NAME":           &c.Database.Database,
		"TASKBRIDGE_RABBITMQ_HOST":     &c.RabbitMQ.Host,
		"TASKBRIDGE_RABBITMQ_USER":     &c.RabbitMQ.User,
		"TASKBRIDGE_RABBITMQ_PASSWORD": &c.RabbitMQ.Password,
		"TASKBRIDGE_LOCALE":            &c.Integration.Locale,
		"TASKBRIDGE_TRANSPORT":         &c.Transport.Kind,
		"TASKBRIDGE_BASE_URL":          &c.Transport.BaseURL,
		"TASKBRIDGE_LOG_LEVEL":         &c.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"TASKBRIDGE_DB_PORT":       &c.Database.Port,
		"TASKBRIDGE_RABBITMQ_PORT": &c.RabbitMQ.Port,
		"TASKBRIDGE_SERVER_PORT":   &c.Server.Port,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", key, err)
		}
		*dst = n
	}

	if v, ok := lookup("TASKBRIDGE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TASKBRIDGE_ENABLED value: %w", err)
		}
		c.Integration.Enabled = b
	}
	if v, ok := lookup("TASKBRIDGE_PROJECT_ID"); ok {
		c.Integration.ProjectID = v
	}
	return nil
}

// Validate rejects settings no component can work with
func (c *Config) Validate() error {
	switch c.Transport.Kind {
	case TransportHTTP, TransportQueue:
	default:
		return fmt.Errorf("unknown transport kind: %s", c.Transport.Kind)
	}
	if c.Transport.Timeout <= 0 {
		return fmt.Errorf("transport timeout must be positive")
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
