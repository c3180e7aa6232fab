package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoad(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "test-secret")
		t.Setenv("DATABASE_URL", "postgres://localhost/bazaar")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if cfg.Port != ":8080" || cfg.DBDriver != "postgres" || cfg.TranslateCacheTTL != 24*time.Hour {
			t.Fatalf("\nwanted:\n:8080 postgres 24h\ngot:\n%s %s %v", cfg.Port, cfg.DBDriver, cfg.TranslateCacheTTL)
		}
		if string(SecretKey) != "test-secret" {
			t.Fatalf("\nwanted:\ntest-secret\ngot:\n%s", SecretKey)
		}
		if Location != time.UTC {
			t.Fatalf("\nwanted:\nUTC\ngot:\n%v", Location)
		}
	})

	t.Run("should read overrides from the environment", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "test-secret")
		t.Setenv("DATABASE_URL", "/tmp/bazaar.db")
		t.Setenv("DB_DRIVER", "SQLite")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
		t.Setenv("REDIS_DB", "2")
		t.Setenv("TRANSLATE_URL", "http://translate.local/")
		t.Setenv("TRANSLATE_CACHE_TTL", "90m")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if cfg.DBDriver != "sqlite" || cfg.Port != ":9090" || cfg.RedisDB != 2 {
			t.Fatalf("\nwanted:\nsqlite :9090 2\ngot:\n%s %s %d", cfg.DBDriver, cfg.Port, cfg.RedisDB)
		}
		if cfg.TranslateURL != "http://translate.local" || cfg.TranslateCacheTTL != 90*time.Minute {
			t.Fatalf("\nwanted:\nhttp://translate.local 1h30m0s\ngot:\n%s %v", cfg.TranslateURL, cfg.TranslateCacheTTL)
		}
		if Location.String() != "Asia/Kolkata" {
			t.Fatalf("\nwanted:\nAsia/Kolkata\ngot:\n%v", Location)
		}
		Location = time.UTC
	})

	t.Run("should fail without a secret key", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "")
		t.Setenv("DATABASE_URL", "postgres://localhost/bazaar")

		if _, err := Load(); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should fail on an unknown timezone", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "test-secret")
		t.Setenv("DATABASE_URL", "postgres://localhost/bazaar")
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")

		if _, err := Load(); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestSetupLogger(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetFormatter(&logrus.TextFormatter{})

	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	if err := cfg.SetupLogger(); err != nil {
		t.Fatalf("SetupLogger() failed: %v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", logrus.DebugLevel, logrus.GetLevel())
	}
	if _, ok := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("\nwanted:\n*logrus.JSONFormatter\ngot:\n%T", logrus.StandardLogger().Formatter)
	}

	bad := &Config{LogLevel: "loud", LogFormat: "text"}
	if err := bad.SetupLogger(); err == nil {
		t.Fatalf("\nwanted:\nerror\ngot:\nnil")
	}
}
