package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Database      DatabaseConfig      `envconfig:"DATABASE"`
	JWT           JWTConfig           `envconfig:"JWT"`
	Password      PasswordConfig      `envconfig:"PASSWORD"`
	Unsplash      UnsplashConfig      `envconfig:"UNSPLASH"`
	Countries     CountriesConfig     `envconfig:"COUNTRIES"`
	Weather       WeatherConfig       `envconfig:"WEATHER"`
	Upstream      UpstreamConfig      `envconfig:"UPSTREAM"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Log           LogConfig           `envconfig:"LOG"`
	AWS           AWSConfig           `envconfig:"AWS"`
}

type AWSConfig struct {
	Region  string `envconfig:"REGION" default:"ap-northeast-2"`
	Profile string `envconfig:"PROFILE" default:""`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8000"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
	EnablePprof  bool          `envconfig:"ENABLE_PPROF" default:"false"` // mounts /debug/pprof unauthenticated
}

type DatabaseConfig struct {
	Driver          string        `envconfig:"DRIVER" default:"postgres"` // postgres or sqlite
	URL             string        `envconfig:"URL" required:"true"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	LogQueries      bool          `envconfig:"LOG_QUERIES" default:"false"`
}

type JWTConfig struct {
	Secret     string        `envconfig:"SECRET"`
	SecretName string        `envconfig:"SECRET_NAME" default:""` // AWS Secrets Manager fallback when SECRET is empty
	TTL        time.Duration `envconfig:"TTL" default:"6h"`
	Issuer     string        `envconfig:"ISSUER" default:"travel-api"`
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`
}

type UnsplashConfig struct {
	AccessKey string `envconfig:"ACCESS_KEY" default:""`
	BaseURL   string `envconfig:"BASE_URL" default:"https://api.unsplash.com"`
}

type CountriesConfig struct {
	BaseURL string `envconfig:"BASE_URL" default:"https://restcountries.com"`
}

type WeatherConfig struct {
	BaseURL string `envconfig:"BASE_URL" default:"https://api.open-meteo.com"`
}

type UpstreamConfig struct {
	Timeout             time.Duration `envconfig:"TIMEOUT" default:"5s"`
	RetryCount          int           `envconfig:"RETRY_COUNT" default:"1"`
	RetryWait           time.Duration `envconfig:"RETRY_WAIT" default:"200ms"`
	BreakerMaxFailures  int           `envconfig:"BREAKER_MAX_FAILURES" default:"5"`
	BreakerResetTimeout time.Duration `envconfig:"BREAKER_RESET_TIMEOUT" default:"30s"`
}

type RedisConfig struct {
	Address        string        `envconfig:"ADDRESS" default:""` // empty disables idempotency
	Password       string        `envconfig:"PASSWORD" default:""`
	Database       int           `envconfig:"DATABASE" default:"0"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize       int           `envconfig:"POOL_SIZE" default:"20"`
	PoolTimeout    time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
	TLSEnabled     bool          `envconfig:"TLS_ENABLED" default:"false"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"5m"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Address) != ""
}

type ObservabilityConfig struct {
	MetricsPath    string  `envconfig:"METRICS_PATH" default:"/metrics"`
	OTLPEndpoint   string  `envconfig:"OTLP_ENDPOINT" default:"http://localhost:4318"`
	TracingEnabled bool    `envconfig:"TRACING_ENABLED" default:"false"`
	SampleRate     float64 `envconfig:"SAMPLE_RATE" default:"0.1"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

const maxUpstreamRetries = 3

func Load() (*Config, error) {
	return load(context.Background(), AWSSecretFetcher)
}

func load(ctx context.Context, fetch SecretFetcher) (*Config, error) {
	var cfg Config

	// Load from environment variables
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.CORS.AllowOrigins = normalizeList(cfg.CORS.AllowOrigins)

	// JWT secret may live in Secrets Manager instead of the environment
	if cfg.JWT.Secret == "" && cfg.JWT.SecretName != "" {
		secret, err := fetch(ctx, cfg.AWS, cfg.JWT.SecretName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve JWT secret: %w", err)
		}
		cfg.JWT.Secret = secret
	}

	// Validate required fields
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	// Validate port
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	if strings.TrimSpace(cfg.Database.URL) == "" {
		return fmt.Errorf("database url is required")
	}

	// No fallback secret: tokens signed with a well-known key are forgeable
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return fmt.Errorf("jwt secret is required (set JWT_SECRET or JWT_SECRET_NAME)")
	}

	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("invalid jwt ttl: %s", cfg.JWT.TTL)
	}

	if cfg.Upstream.RetryCount < 0 || cfg.Upstream.RetryCount > maxUpstreamRetries {
		return fmt.Errorf("invalid upstream retry count: %d", cfg.Upstream.RetryCount)
	}

	if cfg.Upstream.Timeout <= 0 {
		return fmt.Errorf("invalid upstream timeout: %s", cfg.Upstream.Timeout)
	}

	// Validate sample rate
	if cfg.Observability.SampleRate < 0 || cfg.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", cfg.Observability.SampleRate)
	}

	return nil
}

func normalizeList(raw string) string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
