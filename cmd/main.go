package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ray-remotestate/bazaar/config"
	"github.com/ray-remotestate/bazaar/database"
	"github.com/ray-remotestate/bazaar/server"
	"github.com/ray-remotestate/bazaar/translation"
	"github.com/sirupsen/logrus"
)

const shutdownTimeOut = 10 * time.Second

func main() {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	cfg := config.Init()
	if err := cfg.SetupLogger(); err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	if err := database.ConnectAndMigrate(cfg.DBDriver, cfg.DatabaseURL); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Println("migration is successful")

	var cache translation.Cache
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := translation.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable, translations will not be cached")
		} else {
			redisClient = client
			cache = translation.NewRedisCache(client)
		}
	}
	translator := translation.New(cfg.TranslateURL, cfg.TranslateAPIKey, cache, cfg.TranslateCacheTTL)

	srv := server.SetupRoutes(translator)
	go func() {
		if err := srv.Run(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Panicf("failed to run server, error: %v", err)
		}
	}()
	logrus.Infof("server started at %s", cfg.Port)

	<-done

	logrus.Info("shutting down...")
	if err := srv.Shutdown(shutdownTimeOut); err != nil {
		logrus.WithError(err).Error("failed to gracefully shutdown server")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logrus.WithError(err).Error("failed to close redis connection")
		}
	}
	if err := database.ShutdownDatabase(); err != nil {
		logrus.WithError(err).Error("failed to close database connection!")
	}

	logrus.Info("system is shut ..zzz")
}
