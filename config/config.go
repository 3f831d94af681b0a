package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	EnvFile        string
	SecretKey      string
	DBDriver       string
	DBSource       string
	RedisAddr      string
	CacheTTL       time.Duration
	TokenTTL       time.Duration
	Addr           string
	RequestTimeout time.Duration
	AdminName      string
	AdminPassword  string
}

func Default() Config {
	return Config{
		EnvFile:        "secrete.env",
		DBDriver:       "postgres",
		CacheTTL:       5 * time.Minute,
		TokenTTL:       60 * time.Minute,
		Addr:           ":7777",
		RequestTimeout: 3 * time.Second,
	}
}

// LoadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// FromEnv overlays the environment on top of cfg.
func FromEnv(cfg Config, getenv func(string) string) (Config, error) {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key string) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString(&cfg.SecretKey, "SECRET_KEY")
	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DBSource, "DB_SOURCE")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Addr, "ADDR")
	setString(&cfg.AdminName, "ADMIN_NAME")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")

	for key, dst := range map[string]*time.Duration{
		"CACHE_TTL":       &cfg.CacheTTL,
		"TOKEN_TTL":       &cfg.TokenTTL,
		"REQUEST_TIMEOUT": &cfg.RequestTimeout,
	} {
		if err := setDuration(dst, key); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c Config) Validate(drivers []string) error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is not set"))
	}
	if c.DBSource == "" {
		errs = append(errs, errors.New("DB_SOURCE is not set"))
	}
	if !slices.Contains(drivers, c.DBDriver) {
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of %v", c.DBDriver, drivers))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if (c.AdminName == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_NAME and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}
