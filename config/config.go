package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// SecretKey signs access and refresh tokens.
var SecretKey []byte

// Location is the zone used to decide what "today" means for dashboards.
var Location = time.UTC

type Config struct {
	Port        string
	Timezone    string
	DBDriver    string
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TranslateURL      string
	TranslateAPIKey   string
	TranslateCacheTTL time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TRANSLATE_URL", "")
	v.SetDefault("TRANSLATE_API_KEY", "")
	v.SetDefault("TRANSLATE_CACHE_TTL", 24*time.Hour)
}

// Load reads .env (if present) and the process environment, and sets the
// package-level SecretKey and Location.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	secret := v.GetString("JWT_SECRET_KEY")
	if secret == "" {
		return nil, errors.New("JWT secret key not set")
	}

	cfg := &Config{
		Port:              v.GetString("APP_PORT"),
		Timezone:          v.GetString("APP_TIMEZONE"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         strings.ToLower(v.GetString("LOG_FORMAT")),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		TranslateURL:      strings.TrimRight(v.GetString("TRANSLATE_URL"), "/"),
		TranslateAPIKey:   v.GetString("TRANSLATE_API_KEY"),
		TranslateCacheTTL: v.GetDuration("TRANSLATE_CACHE_TTL"),
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL not set")
	}
	if !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	SecretKey = []byte(secret)
	Location = loc
	return cfg, nil
}

// Init is Load for main: any configuration error is fatal.
func Init() *Config {
	cfg, err := Load()
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return cfg
}

// SetupLogger applies the configured level and format to the standard logrus
// logger.
func (c *Config) SetupLogger() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logrus.SetLevel(level)

	switch c.LogFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
