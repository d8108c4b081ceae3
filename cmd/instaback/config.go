package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/instaback/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction

	// Used in dev environment only, when options are not configured
	insecureAccessSecret  = "insecure-dev-access-secret"
	insecureRefreshSecret = "insecure-dev-refresh-secret"
	devAccessTTL          = 15 * time.Minute
	devRefreshTTL         = 7 * 24 * time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Redis to keep refresh token fingerprints in. Postgres is used when empty
	RedisURL string

	// Secrets to sign access and refresh tokens with. Have to differ
	AccessSecret  string
	RefreshSecret string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"REDIS_URL":            setString(&c.RedisURL),
		"ACCESS_TOKEN_SECRET":  setString(&c.AccessSecret),
		"REFRESH_TOKEN_SECRET": setString(&c.RefreshSecret),
		"ACCESS_TOKEN_TTL":     setDuration(&c.AccessTTL),
		"REFRESH_TOKEN_TTL":    setDuration(&c.RefreshTTL),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("instaback", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.RedisURL, "redis", "r", c.RedisURL, "Redis url to keep refresh token fingerprints (optional)")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Secret to sign access tokens")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Secret to sign refresh tokens")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "Refresh token lifetime")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}

// Validate config. In dev environment missing secrets and TTLs are replaced with development ones
// Returns names of the options that were defaulted
func (c *Config) Validate() (defaulted []string, err error) {
	if c.Environment == logger.EnvDevelopment {
		setDefault := func(name string, isSet bool, set func()) {
			if !isSet {
				set()
				defaulted = append(defaulted, name)
			}
		}
		setDefault("access-secret", c.AccessSecret != "", func() { c.AccessSecret = insecureAccessSecret })
		setDefault("refresh-secret", c.RefreshSecret != "", func() { c.RefreshSecret = insecureRefreshSecret })
		setDefault("access-ttl", c.AccessTTL != 0, func() { c.AccessTTL = devAccessTTL })
		setDefault("refresh-ttl", c.RefreshTTL != 0, func() { c.RefreshTTL = devRefreshTTL })
	}

	switch {
	case c.AccessSecret == "" || c.RefreshSecret == "":
		return defaulted, errors.New("access and refresh token secrets are required")
	case c.AccessSecret == c.RefreshSecret:
		return defaulted, errors.New("access and refresh token secrets have to differ")
	case c.AccessTTL <= 0 || c.RefreshTTL <= 0:
		return defaulted, errors.New("access and refresh token TTLs are required and have to be positive")
	case c.DatabaseDSN == "":
		return defaulted, errors.New("database connection string is required")
	}

	return defaulted, nil
}
