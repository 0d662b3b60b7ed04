// Package config loads application configuration from a .env file, an
// optional config.yml and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinSecretLength is the shortest JWT_SECRET accepted.
const MinSecretLength = 16

// Config holds every tunable the server reads at startup.
type Config struct {
	Port       int           `mapstructure:"PORT"`
	DBPath     string        `mapstructure:"DB_PATH"`
	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	LogLevel   string        `mapstructure:"LOG_LEVEL"`
	BcryptCost int           `mapstructure:"BCRYPT_COST"`
	TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`
}

// Load reads configuration for the process.
//
// A missing .env or config.yml is fine. A config.yml that exists but does
// not parse is an error, as is any value Validate rejects.
func Load() (*Config, error) {
	// Existing environment variables win over .env entries.
	_ = godotenv.Load()
	return load(".")
}

// load is Load without the .env step, searching configPaths for config.yml.
func load(configPaths ...string) (*Config, error) {
	v := viper.New()
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// Every key needs a default: Unmarshal only sees keys viper knows about,
	// and AutomaticEnv does not register keys on its own.
	v.SetDefault("PORT", 3003)
	v.SetDefault("DB_PATH", "data/bloglist.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("TOKEN_TTL", "1h")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config.yml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", MinSecretLength)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return level, nil
}
