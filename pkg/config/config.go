package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Server       ServerConfig       `envconfig:"SERVER"`
	Database     DatabaseConfig     `envconfig:"DB"`
	Redis        RedisConfig        `envconfig:"REDIS"`
	CallProvider CallProviderConfig `envconfig:"CALL_PROVIDER"`
	LLM          LLMConfig          `envconfig:"LLM"`
	Calendar     CalendarConfig     `envconfig:"CALENDAR"`
	Mail         MailConfig         `envconfig:"MAIL"`
	Pipeline     PipelineConfig     `envconfig:"PIPELINE"`
	Archive      ArchiveConfig      `envconfig:"ARCHIVE"`
	JWT          JWTConfig          `envconfig:"JWT"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `split_words:"true" default:"8080"`
	Host            string        `split_words:"true" default:"0.0.0.0"`
	Environment     string        `split_words:"true" default:"development"`
	AllowedOrigins  []string      `split_words:"true" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// DatabaseConfig holds database configuration.
// Driver is "postgres" or "sqlite"; SqlitePath is only used by the latter.
type DatabaseConfig struct {
	Driver      string `split_words:"true" default:"postgres" validate:"oneof=postgres sqlite"`
	Host        string `split_words:"true" default:"localhost"`
	Port        string `split_words:"true" default:"5432"`
	User        string `split_words:"true" default:"postgres"`
	Password    string `split_words:"true" default:"postgres"`
	Name        string `split_words:"true" default:"interview_scheduler"`
	SSLMode     string `split_words:"true" default:"disable"`
	SqlitePath  string `split_words:"true" default:"interview_scheduler.db"`
	MaxConns    int    `split_words:"true" default:"25"`
	MinConns    int    `split_words:"true" default:"5"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration. When disabled, locks are kept in process memory.
type RedisConfig struct {
	Enabled  bool          `split_words:"true" default:"false"`
	Host     string        `split_words:"true" default:"localhost"`
	Port     string        `split_words:"true" default:"6379"`
	Password string        `split_words:"true"`
	DB       int           `split_words:"true" default:"0"`
	LockTTL  time.Duration `split_words:"true" default:"5m"`
}

// CallProviderConfig holds voice-call provider configuration
type CallProviderConfig struct {
	BaseURL       string        `split_words:"true" default:"https://api.bland.ai"`
	APIKey        string        `split_words:"true" validate:"required"`
	WebhookSecret string        `split_words:"true"`
	Voice         string        `split_words:"true"`
	Language      string        `split_words:"true" default:"en"`
	Timeout       time.Duration `split_words:"true" default:"30s"`
}

// LLMConfig holds configuration for the OpenAI-compatible completion endpoint
type LLMConfig struct {
	BaseURL     string        `split_words:"true" default:"https://api.openai.com"`
	APIKey      string        `split_words:"true" validate:"required"`
	Model       string        `split_words:"true" default:"gpt-4o-mini"`
	Temperature float64       `split_words:"true" default:"0"`
	MaxTokens   int           `split_words:"true" default:"32"`
	Timeout     time.Duration `split_words:"true" default:"30s"`
}

// CalendarConfig holds Google Calendar configuration.
// RefreshToken is produced out of band by the OAuth consent flow.
type CalendarConfig struct {
	ClientID     string `split_words:"true" validate:"required"`
	ClientSecret string `split_words:"true" validate:"required"`
	RefreshToken string `split_words:"true" validate:"required"`
	CalendarID   string `envconfig:"ID" default:"primary"`
	TimeZone     string `split_words:"true" default:"Asia/Kolkata"`
	Endpoint     string `split_words:"true"`
}

// MailConfig holds SMTP and retry configuration for invitee notifications
type MailConfig struct {
	Host        string        `split_words:"true" validate:"required"`
	Port        int           `split_words:"true" default:"587"`
	Username    string        `split_words:"true"`
	Password    string        `split_words:"true"`
	From        string        `split_words:"true" validate:"required,email"`
	CC          []string      `split_words:"true" validate:"dive,email"`
	MaxAttempts int           `split_words:"true" default:"3" validate:"min=1"`
	BaseDelay   time.Duration `split_words:"true" default:"2s"`
	Timeout     time.Duration `split_words:"true" default:"15s"`
}

// PipelineConfig holds post-call orchestration settings
type PipelineConfig struct {
	RunTimeout       time.Duration `split_words:"true" default:"2m"`
	FallbackTime     string        `split_words:"true" default:"10:00" validate:"datetime=15:04"`
	BatchConcurrency int           `split_words:"true" default:"1" validate:"min=1"`
}

// ArchiveConfig holds object storage configuration for raw call payloads
type ArchiveConfig struct {
	Enabled         bool   `split_words:"true" default:"false"`
	Endpoint        string `split_words:"true" default:"localhost:9000"`
	AccessKeyID     string `split_words:"true" default:"minioadmin"`
	SecretAccessKey string `split_words:"true" default:"minioadmin"`
	BucketName      string `split_words:"true" default:"interview-scheduler"`
	Region          string `split_words:"true" default:"us-east-1"`
	UseSSL          bool   `split_words:"true" default:"false"`
}

// JWTConfig holds operator token configuration
type JWTConfig struct {
	Secret string        `split_words:"true" default:"your-operator-secret-change-in-production"`
	Expiry time.Duration `split_words:"true" default:"24h"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config, err := LoadUnvalidated()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadUnvalidated reads the environment without enforcing required upstream credentials.
// Operator commands that only touch the database use it.
func LoadUnvalidated() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Server.Environment == "production" && c.JWT.Secret == "your-operator-secret-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
