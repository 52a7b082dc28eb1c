package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "CRUDSTORE"

// Config holds the application configuration.
type Config struct {
	Env      string `envconfig:"LOG_ENV" default:"prod"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr        string        `envconfig:"GRPC_ADDR" default:":9090"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Empty PGDSN selects the in-memory stores.
	PGDSN string `envconfig:"PG_DSN"`

	// JWTSecret may instead be read from the file named by JWTSecretFile.
	JWTSecret     string        `envconfig:"JWT_SECRET"`
	JWTSecretFile string        `envconfig:"JWT_SECRET_FILE"`
	JWTIssuer     string        `envconfig:"JWT_ISSUER" default:"crudstore-backend"`
	JWTTTL        time.Duration `envconfig:"JWT_TTL" default:"30m"`
	BcryptCost    int           `envconfig:"BCRYPT_COST" default:"10"`
	RoleCacheTTL  time.Duration `envconfig:"ROLE_CACHE_TTL" default:"5m"`

	CORSAllowedOrigins string  `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:4200"`
	RateLimitRPS       float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst     int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
	MaxBodyBytes       int64   `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	SeedDemoData bool `envconfig:"SEED_DEMO_DATA" default:"true"`
}

// AllowedOrigins splits CORSAllowedOrigins on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT secret is required (CRUDSTORE_JWT_SECRET or CRUDSTORE_JWT_SECRET_FILE)"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT secret must be at least 32 bytes"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT TTL must be positive"))
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate limit settings must not be negative"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max body bytes must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads envFile when it exists, then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process env vars: %w", err)
	}
	if cfg.JWTSecret == "" && cfg.JWTSecretFile != "" {
		raw, err := os.ReadFile(cfg.JWTSecretFile)
		if err != nil {
			return nil, fmt.Errorf("read JWT secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(raw))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
