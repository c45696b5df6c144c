// Command hms runs the Hospital Management System portal shell, its
// development backend, and terminal access to the stored session.
//
//	@title			HMS Portal
//	@version		1.0
//	@description	Session and role-gated views of the Hospital Management System portal.
//	@BasePath		/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hospital-ms/hms-portal/internal/pkg/config"
	"github.com/hospital-ms/hms-portal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once the root has loaded the
// configuration.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "hms",
		Short:         "Hospital Management System portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  cfg.IsDevelopment(),
				Service: "hms",
			}).With().Str("command", cmd.CommandPath()).Logger()
			return nil
		},
	}

	cmd.AddCommand(newPortalCommand(a))
	cmd.AddCommand(newDevAPICommand(a))
	cmd.AddCommand(newSessionCommand(a))
	cmd.AddCommand(newOpenCommand(a))
	return cmd
}
