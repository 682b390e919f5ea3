// Command api serves the CRM's HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grayco-suite/bootstrap"

	"github.com/rs/zerolog/log"
)

func main() {
	rt, err := bootstrap.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("api: startup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := checkConnections(ctx, rt); err != nil {
		log.Fatal().Err(err).Msg("api: dependency check failed")
	}

	port := rt.Config.Port
	log.Info().Str("port", port).Str("env", rt.Config.Env).
		Str("health", "http://localhost:"+port+"/health/json").
		Str("lead_webhook", "http://localhost:"+port+"/api/lead_receiver").
		Msg("api: listening")

	errc := make(chan error, 1)
	go func() { errc <- rt.App.Listen(":" + port) }()

	select {
	case err := <-errc:
		if err != nil {
			log.Fatal().Err(err).Msg("api: server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("api: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.App.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("api: shutdown")
		}
		if rt.Redis != nil {
			_ = rt.Redis.Close()
		}
	}
}

// checkConnections fails fast on an unreachable Postgres or Redis rather than serving 500s.
func checkConnections(ctx context.Context, rt *bootstrap.Runtime) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if rt.DB == nil {
		log.Warn().Msg("api: no DATABASE_URL set, only health and auth routes are mounted")
	} else {
		sqlDB, err := rt.DB.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return err
		}
		log.Info().Msg("api: postgres connected")
	}
	if err := rt.Redis.Ping(ctx).Err(); err != nil {
		return err
	}
	log.Info().Msg("api: redis connected")
	return nil
}
