package config

import (
	"os"
	"strconv"
	"time"

	"brain2-canvas/pkg/utils"
)

// Persistence backends
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	Environment string `validate:"required"`
	LogLevel    string `validate:"oneof=debug info warn error"`

	// Canvas
	ProjectID             string `validate:"required"`
	ProjectName           string
	InteractionConfigPath string
	WatchInteractionFile  bool

	// Persistence
	Backend       string `validate:"oneof=memory dynamodb"`
	AWSRegion     string
	DynamoDBTable string `validate:"required_if=Backend dynamodb"`
	EventBusName  string
	EventSource   string `validate:"required_with=EventBusName"`

	// Circuit breaker around remote writes
	BreakerMaxFailures uint32        `validate:"gt=0"`
	BreakerTimeout     time.Duration `validate:"gt=0"`
	SaveTimeout        time.Duration `validate:"gt=0"`

	// Ops surface
	MetricsAddress  string
	EnableMetrics   bool
	EnableTracing   bool
	TracingEndpoint string `validate:"required_if=EnableTracing true"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		ProjectID:             getEnv("PROJECT_ID", "default"),
		ProjectName:           getEnv("PROJECT_NAME", "Untitled"),
		InteractionConfigPath: getEnv("INTERACTION_CONFIG", ""),
		WatchInteractionFile:  getEnvBool("WATCH_INTERACTION_CONFIG", true),

		Backend:       getEnv("PERSISTENCE_BACKEND", BackendMemory),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "")),
		EventBusName:  getEnv("EVENT_BUS_NAME", ""),
		EventSource:   getEnv("EVENT_SOURCE", "brain2.canvas"),

		BreakerMaxFailures: uint32(getEnvInt("BREAKER_MAX_FAILURES", 5)),
		BreakerTimeout:     getEnvDuration("BREAKER_TIMEOUT", 30*time.Second),
		SaveTimeout:        getEnvDuration("SAVE_TIMEOUT", 5*time.Second),

		MetricsAddress:  getEnv("METRICS_ADDRESS", ":9090"),
		EnableMetrics:   getEnvBool("ENABLE_METRICS", true),
		EnableTracing:   getEnvBool("ENABLE_TRACING", false),
		TracingEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	return utils.ValidateStruct(c)
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
