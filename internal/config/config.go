package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server           ServerConfig           `mapstructure:"server"`
	Database         DatabasesConfig        `mapstructure:"database"`
	ServiceExtension ServiceExtensionConfig `mapstructure:"service_extension"`
	Idempotency      IdempotencyConfig      `mapstructure:"idempotency"`
	Logging          LoggingConfig          `mapstructure:"logging"`
	Consent          ConsentConfig          `mapstructure:"consent"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabasesConfig holds all database configurations
type DatabasesConfig struct {
	Consent DatabaseConfig `mapstructure:"consent"`
}

// DatabaseConfig holds individual database configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ServiceExtensionConfig holds external validation extension configuration
type ServiceExtensionConfig struct {
	Enabled   bool               `mapstructure:"enabled"`
	BaseURL   string             `mapstructure:"base_url"`
	Timeout   time.Duration      `mapstructure:"timeout"`
	Endpoints ExtensionEndpoints `mapstructure:"endpoints"`
}

// ExtensionEndpoints holds the endpoint path for each extension point
type ExtensionEndpoints struct {
	PreConsentAuthorization string `mapstructure:"pre_consent_authorization"`
	ConsentValidation       string `mapstructure:"consent_validation"`
	ConsentPersistence      string `mapstructure:"consent_persistence"`
	ConsentManage           string `mapstructure:"consent_manage"`
	ConsentManageDelete     string `mapstructure:"consent_manage_delete"`
}

// IdempotencyConfig holds idempotency validation configuration
type IdempotencyConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	KeyHeaderName       string `mapstructure:"key_header_name"`
	AllowedTimeDuration int    `mapstructure:"allowed_time_duration"` // minutes
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ConsentConfig holds consent-related configuration
type ConsentConfig struct {
	StatusMappings ConsentStatusMappings `mapstructure:"status_mappings"`
}

// ConsentStatusMappings holds the mapping of specific consent lifecycle states.
// The status vocabulary is open; these name the states the core's rules act on.
type ConsentStatusMappings struct {
	AwaitingAuthorisationStatus string `mapstructure:"awaiting_authorisation_status"`
	AuthorisedStatus            string `mapstructure:"authorised_status"`
	RejectedStatus              string `mapstructure:"rejected_status"`
	RevokedStatus               string `mapstructure:"revoked_status"`
	AmendedStatus               string `mapstructure:"amended_status"`
	ExpiredStatus               string `mapstructure:"expired_status"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("CONSENT_CORE")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Consent.Hostname == "" {
		return fmt.Errorf("database hostname is required")
	}

	if config.Database.Consent.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if config.ServiceExtension.Enabled && config.ServiceExtension.BaseURL == "" {
		return fmt.Errorf("service extension base URL is required when extension is enabled")
	}

	if config.Idempotency.Enabled {
		if config.Idempotency.KeyHeaderName == "" {
			return fmt.Errorf("idempotency key header name is required when idempotency is enabled")
		}
		if config.Idempotency.AllowedTimeDuration <= 0 {
			return fmt.Errorf("idempotency allowed time duration must be positive")
		}
	}

	return nil
}

// GetDSN returns the database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// GetExtensionURL returns the full URL for a service extension endpoint
func (e *ServiceExtensionConfig) GetExtensionURL(endpoint string) string {
	return e.BaseURL + endpoint
}

// AwaitingAuthorisation returns the configured initial consent status
func (c *ConsentConfig) AwaitingAuthorisation() string {
	if c.StatusMappings.AwaitingAuthorisationStatus != "" {
		return c.StatusMappings.AwaitingAuthorisationStatus
	}
	return "AwaitingAuthorisation"
}

// Authorised returns the configured authorised consent status
func (c *ConsentConfig) Authorised() string {
	if c.StatusMappings.AuthorisedStatus != "" {
		return c.StatusMappings.AuthorisedStatus
	}
	return "Authorised"
}

// Rejected returns the configured rejected consent status
func (c *ConsentConfig) Rejected() string {
	if c.StatusMappings.RejectedStatus != "" {
		return c.StatusMappings.RejectedStatus
	}
	return "Rejected"
}

// Revoked returns the configured revoked consent status
func (c *ConsentConfig) Revoked() string {
	if c.StatusMappings.RevokedStatus != "" {
		return c.StatusMappings.RevokedStatus
	}
	return "Revoked"
}

// Amended returns the configured amended consent status
func (c *ConsentConfig) Amended() string {
	if c.StatusMappings.AmendedStatus != "" {
		return c.StatusMappings.AmendedStatus
	}
	return "Amended"
}

// Expired returns the configured expired consent status
func (c *ConsentConfig) Expired() string {
	if c.StatusMappings.ExpiredStatus != "" {
		return c.StatusMappings.ExpiredStatus
	}
	return "Expired"
}

// IsTerminalStatus checks if the given status is a terminal state
func (c *ConsentConfig) IsTerminalStatus(status string) bool {
	return status == c.Revoked() || status == c.Expired() || status == c.Rejected()
}
