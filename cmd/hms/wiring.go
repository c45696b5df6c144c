package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hospital-ms/hms-portal/internal/core/ports"
	"github.com/hospital-ms/hms-portal/internal/core/service"
	"github.com/hospital-ms/hms-portal/internal/infrastructure/authapi"
	"github.com/hospital-ms/hms-portal/internal/infrastructure/db/file"
	"github.com/hospital-ms/hms-portal/internal/infrastructure/db/memory"
	mongodb "github.com/hospital-ms/hms-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/hospital-ms/hms-portal/internal/infrastructure/db/redis"
	"github.com/hospital-ms/hms-portal/internal/infrastructure/http/handlers"
	"github.com/hospital-ms/hms-portal/internal/pkg/config"
	"github.com/hospital-ms/hms-portal/pkg/telemetry"
)

const shutdownTimeout = 10 * time.Second

// storeBackend is the key-value store the session is persisted in.
type storeBackend struct {
	kv    ports.KeyValueStore
	ping  handlers.Checker // nil when there is nothing to probe
	close func()
}

func openStore(ctx context.Context, cfg *config.Config) (*storeBackend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return &storeBackend{kv: memory.NewKeyValueStore(), close: func() {}}, nil

	case config.DriverFile:
		kv := file.NewKeyValueStore(cfg.Store.Path)
		return &storeBackend{kv: kv, ping: kv.Ping, close: func() {}}, nil

	case config.DriverRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		kv := redisdb.NewKeyValueStore(client)
		return &storeBackend{kv: kv, ping: kv.Ping, close: func() { _ = client.Close() }}, nil

	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		kv := mongodb.NewKeyValueStore(db)
		return &storeBackend{kv: kv, ping: kv.Ping, close: func() { _ = mongodb.Disconnect(client, shutdownTimeout) }}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// newSessionManager composes the application's session from the configured
// store and the backend client.
func (a *app) newSessionManager(backend *storeBackend) *service.SessionManager {
	store := service.NewTokenStore(backend.kv, a.cfg.Store.Prefix, a.component("token_store"))
	client := authapi.NewClient(authapi.Config{
		BaseURL: a.cfg.API.BaseURL,
		Timeout: a.cfg.API.Timeout,
	})
	return service.NewSessionManager(store, client, a.component("session"))
}

func (a *app) component(name string) zerolog.Logger {
	return a.log.With().Str("component", name).Logger()
}

// startTracing installs the tracer provider for service. The returned func
// flushes pending spans.
func (a *app) startTracing(ctx context.Context, service string) (func(), error) {
	shutdown, err := telemetry.Init(ctx, service, a.cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			a.log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}, nil
}

// serve runs e on addr until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, e *echo.Echo, service, addr string, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(e, service),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("stopped")
	return nil
}
