package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hospital-ms/hms-portal/internal/api"
	"github.com/hospital-ms/hms-portal/internal/api/metrics"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
	"github.com/hospital-ms/hms-portal/internal/core/service"
	"github.com/hospital-ms/hms-portal/internal/infrastructure/http/handlers"
	"github.com/hospital-ms/hms-portal/internal/infrastructure/queue"
)

func newPortalCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "portal",
		Short: "Serve the portal shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPortal(cmd.Context())
		},
	}
}

func (a *app) runPortal(ctx context.Context) error {
	stopTracing, err := a.startTracing(ctx, "hms-portal")
	if err != nil {
		return err
	}
	defer stopTracing()

	backend, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer backend.close()

	sessions := a.newSessionManager(backend)

	bus := queue.NewBroadcaster(0, a.component("broadcaster"),
		service.LogTransitions(a.component("session")),
		ports.SessionObserverFunc(metrics.ObserveSession),
	)
	bus.Start(ctx)
	defer bus.Close()
	unsubscribe := sessions.Subscribe(bus)
	defer unsubscribe()

	// The shell serves while the stored session loads; guarded views answer
	// "loading" until hydration ends.
	go sessions.Hydrate(ctx)

	refresher := service.NewRefresher(sessions, service.RefresherConfig{
		Before:   a.cfg.Refresh.Before,
		Interval: a.cfg.Refresh.Interval,
		OnResult: func(err error) {
			metrics.RefreshesTotal.WithLabelValues("auto", metrics.Result(err)).Inc()
		},
	}, a.component("refresher"))
	go refresher.Run(ctx)

	checks := map[string]handlers.Checker{
		"session": func(context.Context) error {
			if !sessions.Snapshot().State.Hydrated() {
				return errors.New("session is still loading")
			}
			return nil
		},
	}
	if backend.ping != nil {
		checks["store"] = backend.ping
	}

	e := api.NewPortalRouter(api.PortalDeps{
		Sessions:   sessions,
		Checks:     checks,
		Registerer: prometheus.DefaultRegisterer,
		Log:        a.log,
	})

	a.log.Info().
		Str("api", a.cfg.API.BaseURL).
		Str("store", a.cfg.Store.Driver).
		Msg("starting portal")
	return serve(ctx, e, "hms-portal", ":"+a.cfg.Port, a.log)
}
