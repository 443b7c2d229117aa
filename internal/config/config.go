package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Roster source kinds.
const (
	SourceFixture  = "fixture"
	SourcePostgres = "postgres"
)

// Delivery channels.
const (
	DeliveryLog = "log"
	DeliverySES = "ses"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Brand    BrandConfig    `yaml:"brand"`
	Roster   RosterConfig   `yaml:"roster"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Delivery DeliveryConfig `yaml:"delivery"`
	SES      SESConfig      `yaml:"ses"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port for the HTTP listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level            string `yaml:"level"`
	DisableRedaction bool   `yaml:"disable_redaction"`
}

// BrandConfig names the brand used when a campaign has none.
type BrandConfig struct {
	Name string `yaml:"name"`
}

// RosterConfig selects the roster source and tunes the adoption engine.
type RosterConfig struct {
	Source         string `yaml:"source"`
	FixturePath    string `yaml:"fixture_path"`
	BroadThreshold int    `yaml:"broad_threshold"`
	PageSize       int    `yaml:"page_size"`
	MaxPageSize    int    `yaml:"max_page_size"`
	BaseReach      int    `yaml:"base_reach"`
	PerActionReach int    `yaml:"per_action_reach"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds session store settings. An empty URL keeps sessions in
// process memory.
type RedisConfig struct {
	URL             string `yaml:"url"`
	KeyPrefix       string `yaml:"key_prefix"`
	SessionTTLHours int    `yaml:"session_ttl_hours"`
}

// SessionTTL returns the session lifetime as a duration
func (c RedisConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// StorageConfig holds AWS settings for fixture files on S3 and the optional
// DynamoDB session table.
type StorageConfig struct {
	AWSRegion    string `yaml:"aws_region"`
	AWSProfile   string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	SessionTable string `yaml:"session_table"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// DeliveryConfig selects where sent nudges go.
type DeliveryConfig struct {
	Channel string `yaml:"channel"`
}

// SESConfig holds AWS SES delivery settings
type SESConfig struct {
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	Region         string `yaml:"region"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the SES timeout as a duration
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Brand.Name == "" {
		cfg.Brand.Name = "Our Brand"
	}
	if cfg.Roster.Source == "" {
		cfg.Roster.Source = SourceFixture
	}
	if cfg.Roster.FixturePath == "" {
		cfg.Roster.FixturePath = "config/fixture.yaml"
	}
	if cfg.Roster.BroadThreshold == 0 {
		cfg.Roster.BroadThreshold = 50
	}
	if cfg.Roster.PageSize <= 0 {
		cfg.Roster.PageSize = 10
	}
	if cfg.Roster.MaxPageSize < cfg.Roster.PageSize {
		cfg.Roster.MaxPageSize = max(100, cfg.Roster.PageSize)
	}
	if cfg.Roster.BaseReach == 0 {
		cfg.Roster.BaseReach = 250
	}
	if cfg.Roster.PerActionReach == 0 {
		cfg.Roster.PerActionReach = 120
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "partner-console:session:"
	}
	if cfg.Redis.SessionTTLHours == 0 {
		cfg.Redis.SessionTTLHours = 24
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-east-1"
	}
	if cfg.Delivery.Channel == "" {
		cfg.Delivery.Channel = DeliveryLog
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-west-2"
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
}

// Validate reports settings that cannot work together.
func (cfg *Config) Validate() error {
	switch cfg.Roster.Source {
	case SourceFixture:
		if cfg.Roster.FixturePath == "" {
			return fmt.Errorf("roster.fixture_path is required for the fixture source")
		}
	case SourcePostgres:
		if cfg.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown roster.source %q", cfg.Roster.Source)
	}
	switch cfg.Delivery.Channel {
	case DeliveryLog:
	case DeliverySES:
		if cfg.SES.FromEmail == "" {
			return fmt.Errorf("ses.from_email is required for ses delivery")
		}
	default:
		return fmt.Errorf("unknown delivery.channel %q", cfg.Delivery.Channel)
	}
	return nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BRAND_NAME"); v != "" {
		cfg.Brand.Name = v
	}
	if v := os.Getenv("ROSTER_SOURCE"); v != "" {
		cfg.Roster.Source = v
	}
	if v := os.Getenv("FIXTURE_PATH"); v != "" {
		cfg.Roster.FixturePath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("SES_FROM_EMAIL"); v != "" {
		cfg.SES.FromEmail = v
	}
	if v := os.Getenv("SESSION_TABLE"); v != "" {
		cfg.Storage.SessionTable = v
	}
	if v := os.Getenv("DELIVERY_CHANNEL"); v != "" {
		cfg.Delivery.Channel = v
	}

	return cfg, nil
}
