package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				// Verify some key fields are populated
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "jobs_db", cfg.Database.Database)
				assert.True(t, cfg.RabbitMQ.Enabled)
				assert.Equal(t, "ingest_events", cfg.RabbitMQ.Exchange.Name)
				assert.Equal(t, "ingest_run_events", cfg.RabbitMQ.Queue.Name)
				assert.Equal(t, "us", cfg.Adzuna.Country)
				assert.Equal(t, []string{"Software Engineer", "Data Scientist", "Web Developer"}, cfg.Ingest.QueryTerms)
				assert.Equal(t, "job-ingest-service", cfg.App.Name)
			}
		})
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load("testdata/minimal.yaml")
	require.NoError(t, err)

	assert.Equal(t, "https://api.adzuna.com", cfg.Adzuna.BaseURL)
	assert.Equal(t, "us", cfg.Adzuna.Country)
	assert.Equal(t, 15*time.Second, cfg.Adzuna.Timeout)

	assert.Equal(t, []string{"Software Engineer", "Data Scientist", "Web Developer"}, cfg.Ingest.QueryTerms)
	assert.Equal(t, DefaultMaxRetries, cfg.Ingest.MaxRetries)
	assert.Equal(t, DefaultRetryDelay, cfg.Ingest.RetryDelay)
	assert.Equal(t, DefaultResultsPerPage, cfg.Ingest.ResultsPerPage)
	assert.Equal(t, DefaultMaxDaysOld, cfg.Ingest.MaxDaysOld)
	assert.Equal(t, DefaultBatchSize, cfg.Ingest.BatchSize)
	assert.Equal(t, DefaultSchedule, cfg.Ingest.Schedule)
}

func TestLoad_EnvCredentialsOverrideFile(t *testing.T) {
	t.Setenv("ADZUNA_APP_ID", "env-app-id")
	t.Setenv("ADZUNA_APP_KEY", "env-app-key")

	cfg, err := Load("testdata/valid_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "env-app-id", cfg.Adzuna.AppID)
	assert.Equal(t, "env-app-key", cfg.Adzuna.AppKey)
}

func validIngestConfig() *Config {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "jobs_db",
		},
		Adzuna: AdzunaConfig{
			AppID:  "test-id",
			AppKey: "test-key",
		},
	}
	cfg.applyDefaults()
	return cfg
}

func TestConfig_ValidateIngestConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid with rabbitmq disabled",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "missing app id",
			mutate: func(c *Config) {
				c.Adzuna.AppID = ""
			},
			wantErr:   true,
			errString: "adzuna app_id is required",
		},
		{
			name: "missing app key",
			mutate: func(c *Config) {
				c.Adzuna.AppKey = ""
			},
			wantErr:   true,
			errString: "adzuna app_key is required",
		},
		{
			name: "no query terms",
			mutate: func(c *Config) {
				c.Ingest.QueryTerms = nil
			},
			wantErr:   true,
			errString: "at least one ingest query term",
		},
		{
			name: "negative max retries",
			mutate: func(c *Config) {
				c.Ingest.MaxRetries = -1
			},
			wantErr:   true,
			errString: "max_retries must not be negative",
		},
		{
			name: "negative retry delay",
			mutate: func(c *Config) {
				c.Ingest.RetryDelay = -time.Second
			},
			wantErr:   true,
			errString: "retry_delay must not be negative",
		},
		{
			name: "zero results per page",
			mutate: func(c *Config) {
				c.Ingest.ResultsPerPage = 0
			},
			wantErr:   true,
			errString: "results_per_page must be greater than 0",
		},
		{
			name: "zero max days old",
			mutate: func(c *Config) {
				c.Ingest.MaxDaysOld = 0
			},
			wantErr:   true,
			errString: "max_days_old must be greater than 0",
		},
		{
			name: "zero batch size",
			mutate: func(c *Config) {
				c.Ingest.BatchSize = 0
			},
			wantErr:   true,
			errString: "batch_size must be greater than 0",
		},
		{
			name: "empty database host",
			mutate: func(c *Config) {
				c.Database.Host = ""
			},
			wantErr:   true,
			errString: "database host is required",
		},
		{
			name: "rabbitmq enabled without host",
			mutate: func(c *Config) {
				c.RabbitMQ.Enabled = true
			},
			wantErr:   true,
			errString: "rabbitmq host is required",
		},
		{
			name: "rabbitmq enabled without exchange name",
			mutate: func(c *Config) {
				c.RabbitMQ.Enabled = true
				c.RabbitMQ.Host = "localhost"
				c.RabbitMQ.Port = 5672
				c.RabbitMQ.Queue.Name = "ingest_run_events"
			},
			wantErr:   true,
			errString: "rabbitmq exchange name is required",
		},
		{
			name: "rabbitmq enabled fully configured",
			mutate: func(c *Config) {
				c.RabbitMQ.Enabled = true
				c.RabbitMQ.Host = "localhost"
				c.RabbitMQ.Port = 5672
				c.RabbitMQ.Exchange.Name = "ingest_events"
				c.RabbitMQ.Queue.Name = "ingest_run_events"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validIngestConfig()
			tt.mutate(cfg)

			err := cfg.ValidateIngestConfig()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name: "valid",
			mutate: func(c *Config) {
				c.Server.Port = 8080
			},
			wantErr: false,
		},
		{
			name: "server port too low",
			mutate: func(c *Config) {
				c.Server.Port = 0
			},
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name: "server port too high",
			mutate: func(c *Config) {
				c.Server.Port = 70000
			},
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name: "invalid database port",
			mutate: func(c *Config) {
				c.Server.Port = 8080
				c.Database.Port = 0
			},
			wantErr:   true,
			errString: "invalid database port",
		},
		{
			name: "empty database name",
			mutate: func(c *Config) {
				c.Server.Port = 8080
				c.Database.Database = ""
			},
			wantErr:   true,
			errString: "database name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validIngestConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad_ValidateIntegration(t *testing.T) {
	cfg, err := Load("testdata/valid_config.yaml")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.NoError(t, cfg.ValidateAPIConfig())
	require.NoError(t, cfg.ValidateIngestConfig())
}

func TestPortConstants(t *testing.T) {
	assert.Equal(t, 1, MinPort)
	assert.Equal(t, 65535, MaxPort)
}
