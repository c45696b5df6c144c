package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hospital-ms/hms-portal/internal/api"
	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
	"github.com/hospital-ms/hms-portal/internal/core/service"
	"github.com/hospital-ms/hms-portal/internal/infrastructure/db/memory"
	mongodb "github.com/hospital-ms/hms-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/hospital-ms/hms-portal/internal/infrastructure/db/redis"
	"github.com/hospital-ms/hms-portal/internal/infrastructure/http/handlers"
	"github.com/hospital-ms/hms-portal/internal/pkg/config"
)

// seedAccount is a demo account created when SEED_USERS is on.
type seedAccount struct {
	email    string
	password string
	role     domain.Role
}

var seedAccounts = []seedAccount{
	{"admin@hms.com", "admin123", domain.RoleAdmin},
	{"doctor@hms.com", "doctor123", domain.RoleDoctor},
	{"staff@hms.com", "staff123", domain.RoleStaff},
	{"patient@hms.com", "patient123", domain.RolePatient},
}

func newDevAPICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devapi",
		Short: "Serve a development stand-in for the backend's /auth API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDevAPI(cmd.Context())
		},
	}
}

func (a *app) runDevAPI(ctx context.Context) error {
	if err := a.cfg.RequireJWTSecret(); err != nil {
		return err
	}
	stopTracing, err := a.startTracing(ctx, "hms-devapi")
	if err != nil {
		return err
	}
	defer stopTracing()

	checks := make(map[string]handlers.Checker)

	var repo ports.AuthRepository
	switch a.cfg.DevAPI.Store {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: a.cfg.Mongo.URI, Database: a.cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() { _ = mongodb.Disconnect(client, shutdownTimeout) }()
		mongoRepo := mongodb.NewAuthRepository(db)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		repo = mongoRepo
		checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	default:
		repo = memory.NewAuthRepository()
	}

	var revoker ports.TokenRevoker
	switch a.cfg.DevAPI.Revocation {
	case config.DriverRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: a.cfg.Redis.Addr, Password: a.cfg.Redis.Password, DB: a.cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()
		revoker = redisdb.NewRevocationList(client)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	default:
		revoker = memory.NewRevocationList()
	}

	auth := service.NewAuthService(repo, revoker, a.cfg.DevAPI.JWTSecret, a.cfg.DevAPI.TokenTTL)
	if a.cfg.DevAPI.SeedUsers {
		if err := seedUsers(ctx, auth); err != nil {
			return err
		}
		a.log.Info().Int("accounts", len(seedAccounts)).Msg("demo accounts ready")
	}

	e := api.NewDevAPIRouter(api.DevAPIDeps{
		Auth:       auth,
		Checks:     checks,
		LoginRate:  a.cfg.DevAPI.LoginRate,
		Registerer: prometheus.DefaultRegisterer,
		Log:        a.log,
	})

	a.log.Info().
		Str("store", a.cfg.DevAPI.Store).
		Str("revocation", a.cfg.DevAPI.Revocation).
		Msg("starting development backend")
	return serve(ctx, e, "hms-devapi", ":"+a.cfg.DevAPI.Port, a.log)
}

// seedUsers creates the demo accounts, leaving existing ones untouched.
func seedUsers(ctx context.Context, auth ports.AuthService) error {
	for _, acc := range seedAccounts {
		_, err := auth.Register(ctx, acc.email, acc.password, acc.role)
		if err != nil && !errors.Is(err, domain.ErrUserExists) {
			return fmt.Errorf("seed %s: %w", acc.email, err)
		}
	}
	return nil
}
