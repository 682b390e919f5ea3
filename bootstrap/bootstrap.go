// Package bootstrap wires config, logging and the HTTP app for both the server binary and the serverless handler.
package bootstrap

import (
	"os"
	"time"

	"grayco-suite/internal/config"
	"grayco-suite/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Runtime is a built app plus the connections it holds. DB is nil without DATABASE_URL.
type Runtime struct {
	Config *config.Config
	App    *fiber.App
	DB     *gorm.DB
	Redis  *redis.Client
}

// ConfigureLogging sets the global zerolog level and writer: JSON in production, console elsewhere.
func ConfigureLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// Build loads config and opens everything the app needs.
func Build() (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	ConfigureLogging(cfg)
	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	return &Runtime{Config: cfg, App: app, DB: db, Redis: rdb}, nil
}

// New returns only the app, for the serverless handler.
func New() (*fiber.App, error) {
	rt, err := Build()
	if err != nil {
		return nil, err
	}
	return rt.App, nil
}
