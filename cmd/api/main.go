// @title           Agrofeira Cliente Auth API
// @version         1.0
// @description     Registration, login and bearer-token sessions for marketplace clientes.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/agrofeira/cliente-auth/internal/api"
	"github.com/agrofeira/cliente-auth/internal/api/handler"
	"github.com/agrofeira/cliente-auth/internal/core/service"
	"github.com/agrofeira/cliente-auth/internal/infrastructure/db/mongo"
	"github.com/agrofeira/cliente-auth/internal/infrastructure/db/redis"
	"github.com/agrofeira/cliente-auth/internal/pkg/config"
	"github.com/agrofeira/cliente-auth/pkg/logger"
)

const serviceName = "cliente-auth"

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	redisClient, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}()

	clientes := mongo.NewClienteRepository(db)
	if err := clientes.EnsureIndexes(ctx); err != nil {
		return err
	}

	tokens := redis.NewTokenStore(redisClient, redis.TokenStoreOptions{
		TTL:              cfg.Auth.TokenTTL,
		RevokedRetention: cfg.Auth.RevokedRetention,
	})

	authService := service.NewAuthService(clientes, tokens, log,
		service.WithBcryptCost(cfg.Auth.BcryptCost),
	)

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		Checks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return mongo.Ping(ctx, db) },
			"redis":   pingRedis(redisClient),
		},
		Logger: log,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Stringer("log_level", logger.Level()).
			Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func pingRedis(client *goredis.Client) handler.DependencyCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
