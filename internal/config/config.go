// Package config loads the process configuration once at startup.
//
// Values resolve in priority order:
//
//	OS environment -> .env file -> AWS SSM Parameter Store
//
// A missing required value or an invalid format is reported as a
// *ConfigError and the binary exits.
package config

import (
	"time"

	"soilwater/internal/types"
)

// SecretString is the redacted secret type used for credentials.
type SecretString = types.SecretString

// Config is the configuration of the API server.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"soilwater-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Database      DatabaseConfig
	AWS           AWSConfig
	Events        EventsConfig
	Timeseries    TimeseriesConfig
	Observability ObservabilityConfig
	Security      SecurityConfig
	Analysis      AnalysisConfig

	// Injected via ldflags, not read from the environment.
	Build BuildInfo `ignored:"true"`
}

type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	APIExternalURL string        `envconfig:"API_EXTERNAL_URL" validate:"required,url"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds the analysis history store connection and pool tuning.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"10" validate:"min=1"`
	MinConns          int32         `envconfig:"DB_MIN_CONNS" default:"2" validate:"min=0"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`
	// AnalysisQueueURL receives analysis events when EVENTS_BACKEND=sqs.
	AnalysisQueueURL string `envconfig:"SQS_ANALYSIS_EVENTS" validate:"omitempty,url"`
	// EndpointURL points the SDK at LocalStack; empty in deployed environments.
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// EventsConfig selects and configures the analysis event transport.
type EventsConfig struct {
	Backend types.EventBackend `envconfig:"EVENTS_BACKEND" default:"none" validate:"oneof=none mqtt sqs"`

	MQTTBrokerURL      string        `envconfig:"MQTT_BROKER_URL" validate:"required_if=Backend mqtt,omitempty,url"`
	MQTTClientID       string        `envconfig:"MQTT_CLIENT_ID" default:"soilwater-api"`
	MQTTUsername       string        `envconfig:"MQTT_USERNAME"`
	MQTTPassword       SecretString  `envconfig:"MQTT_PASSWORD"`
	MQTTTopicPrefix    string        `envconfig:"MQTT_TOPIC_PREFIX" default:"soilwater/profiles"`
	MQTTConnectTimeout time.Duration `envconfig:"MQTT_CONNECT_TIMEOUT" default:"10s"`
}

// TimeseriesConfig locates the InfluxDB bucket that stores field soil
// profiles. Only the profile sink requires it.
type TimeseriesConfig struct {
	URL    string       `envconfig:"INFLUX_URL" validate:"omitempty,url"`
	Token  SecretString `envconfig:"INFLUX_TOKEN"`
	Org    string       `envconfig:"INFLUX_ORG"`
	Bucket string       `envconfig:"INFLUX_BUCKET" default:"soil_profiles"`
}

type ObservabilityConfig struct {
	MetricsBackend  types.MetricsBackend `envconfig:"METRICS_BACKEND" default:"none" validate:"oneof=none cloudwatch prometheus"`
	MetricNamespace string               `envconfig:"METRIC_NAMESPACE" default:"SoilWater"`
}

type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	// RateLimitPerMinute caps requests per organization; 0 disables it.
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120" validate:"min=0"`
}

// AnalysisConfig tunes the analysis service.
type AnalysisConfig struct {
	BatchConcurrency int `envconfig:"ANALYSIS_BATCH_CONCURRENCY" default:"8" validate:"min=1,max=64"`
	// HistoryBreakerFailures is the number of consecutive history write
	// failures that opens the circuit breaker.
	HistoryBreakerFailures uint32        `envconfig:"HISTORY_BREAKER_FAILURES" default:"5" validate:"min=1"`
	HistoryBreakerCooldown time.Duration `envconfig:"HISTORY_BREAKER_COOLDOWN" default:"30s"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	ErrMissingEnv    ConfigErrorType = "MISSING_ENV"
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	ErrValidation    ConfigErrorType = "VALIDATION_FAILED"
	ErrParsing       ConfigErrorType = "PARSING_FAILED"
)
