// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBSource          string        `mapstructure:"DB_SOURCE"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	ServerAddress     string        `mapstructure:"SERVER_ADDRESS"`
	TokenSymmetricKey string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	TokenType         string        `mapstructure:"TOKEN_TYPE"`
	Environment       string        `mapstructure:"GO_ENV"`
	RedisAddress      string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	EntryFeedKey      string        `mapstructure:"ENTRY_FEED_KEY"`
	MaxAttempts       int           `mapstructure:"LEDGER_MAX_ATTEMPTS"`
	BackoffBase       time.Duration `mapstructure:"LEDGER_BACKOFF_BASE"`
	BackoffMax        time.Duration `mapstructure:"LEDGER_BACKOFF_MAX"`
	CurrenciesFile    string        `mapstructure:"CURRENCIES_FILE"`
}

// Load reads configuration from file or environment variables.
//
// A .env file in the working directory, when present, is loaded into the
// environment first so it overrides app.env without being required.
func Load(path string) (Config, error) {
	var c Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, err
	}

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("TOKEN_TYPE", "paseto")
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("ENTRY_FEED_KEY", "ledger:entries")
	v.SetDefault("LEDGER_MAX_ATTEMPTS", 5)
	v.SetDefault("LEDGER_BACKOFF_BASE", 2*time.Millisecond)
	v.SetDefault("LEDGER_BACKOFF_MAX", 100*time.Millisecond)

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}
