package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Default ingest parameters, applied when the config file leaves them
// unset. The ingest service flags can still override per run.
const (
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 30 * time.Second
	DefaultBatchSize      = 50
	DefaultResultsPerPage = 50
	DefaultMaxDaysOld     = 30
	DefaultSchedule       = "@daily"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Adzuna   AdzunaConfig   `yaml:"adzuna"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Logging  LoggingConfig  `yaml:"logging"`
	App      AppConfig      `yaml:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RabbitMQConfig holds RabbitMQ connection and exchange/queue
// configuration for run event publishing. When Enabled is false the
// ingest service never connects.
type RabbitMQConfig struct {
	Enabled    bool             `yaml:"enabled"`
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	User       string           `yaml:"user"`
	Password   string           `yaml:"password"`
	VHost      string           `yaml:"vhost"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Queue      QueueConfig      `yaml:"queue"`
	RoutingKey string           `yaml:"routing_key"`
	Connection ConnectionConfig `yaml:"connection"`
	Publish    PublishConfig    `yaml:"publish"`
}

// ExchangeConfig holds RabbitMQ exchange configuration
type ExchangeConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// QueueConfig holds RabbitMQ queue configuration
type QueueConfig struct {
	Name       string `yaml:"name"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
	Exclusive  bool   `yaml:"exclusive"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// AdzunaConfig holds search API credentials and connection settings.
// AppID and AppKey can also come from the ADZUNA_APP_ID and
// ADZUNA_APP_KEY environment variables, which take precedence over the
// file so credentials stay out of checked-in config.
type AdzunaConfig struct {
	BaseURL string        `yaml:"base_url"`
	AppID   string        `yaml:"app_id"`
	AppKey  string        `yaml:"app_key"`
	Country string        `yaml:"country"`
	Timeout time.Duration `yaml:"timeout"`
}

// IngestConfig holds the pipeline run parameters
type IngestConfig struct {
	QueryTerms     []string      `yaml:"query_terms"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	ResultsPerPage int           `yaml:"results_per_page"`
	MaxDaysOld     int           `yaml:"max_days_old"`
	BatchSize      int           `yaml:"batch_size"`
	Schedule       string        `yaml:"schedule"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level            string `yaml:"level"`
	Format           string `yaml:"format"`
	Output           string `yaml:"output"`
	EnableCaller     bool   `yaml:"enable_caller"`
	EnableStackTrace bool   `yaml:"enable_stack_trace"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// Load reads and parses the configuration file, fills in defaults and
// applies credential overrides from the environment
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if appID := os.Getenv("ADZUNA_APP_ID"); appID != "" {
		config.Adzuna.AppID = appID
	}
	if appKey := os.Getenv("ADZUNA_APP_KEY"); appKey != "" {
		config.Adzuna.AppKey = appKey
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Adzuna.BaseURL == "" {
		c.Adzuna.BaseURL = "https://api.adzuna.com"
	}
	if c.Adzuna.Country == "" {
		c.Adzuna.Country = "us"
	}
	if c.Adzuna.Timeout == 0 {
		c.Adzuna.Timeout = 15 * time.Second
	}

	if len(c.Ingest.QueryTerms) == 0 {
		c.Ingest.QueryTerms = []string{"Software Engineer", "Data Scientist", "Web Developer"}
	}
	if c.Ingest.MaxRetries == 0 {
		c.Ingest.MaxRetries = DefaultMaxRetries
	}
	if c.Ingest.RetryDelay == 0 {
		c.Ingest.RetryDelay = DefaultRetryDelay
	}
	if c.Ingest.ResultsPerPage == 0 {
		c.Ingest.ResultsPerPage = DefaultResultsPerPage
	}
	if c.Ingest.MaxDaysOld == 0 {
		c.Ingest.MaxDaysOld = DefaultMaxDaysOld
	}
	if c.Ingest.BatchSize == 0 {
		c.Ingest.BatchSize = DefaultBatchSize
	}
	if c.Ingest.Schedule == "" {
		c.Ingest.Schedule = DefaultSchedule
	}
}

// ValidateAPIConfig checks the fields the API service depends on
func (c *Config) ValidateAPIConfig() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	return c.validateDatabase()
}

// ValidateIngestConfig checks the fields the ingest service depends on
func (c *Config) ValidateIngestConfig() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if c.Adzuna.AppID == "" {
		return fmt.Errorf("adzuna app_id is required (set adzuna.app_id or ADZUNA_APP_ID)")
	}

	if c.Adzuna.AppKey == "" {
		return fmt.Errorf("adzuna app_key is required (set adzuna.app_key or ADZUNA_APP_KEY)")
	}

	if len(c.Ingest.QueryTerms) == 0 {
		return fmt.Errorf("at least one ingest query term is required")
	}

	if c.Ingest.MaxRetries < 0 {
		return fmt.Errorf("ingest max_retries must not be negative")
	}

	if c.Ingest.RetryDelay < 0 {
		return fmt.Errorf("ingest retry_delay must not be negative")
	}

	if c.Ingest.ResultsPerPage <= 0 {
		return fmt.Errorf("ingest results_per_page must be greater than 0")
	}

	if c.Ingest.MaxDaysOld <= 0 {
		return fmt.Errorf("ingest max_days_old must be greater than 0")
	}

	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("ingest batch_size must be greater than 0")
	}

	if c.RabbitMQ.Enabled {
		if c.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq host is required when rabbitmq is enabled")
		}

		if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
			return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
		}

		if c.RabbitMQ.Exchange.Name == "" {
			return fmt.Errorf("rabbitmq exchange name is required when rabbitmq is enabled")
		}

		if c.RabbitMQ.Queue.Name == "" {
			return fmt.Errorf("rabbitmq queue name is required when rabbitmq is enabled")
		}
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < MinPort || c.Database.Port > MaxPort {
		return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	return nil
}
