package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/service"
)

func newSessionCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Sign in, sign out and inspect the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newSessionLoginCommand(a))
	cmd.AddCommand(newSessionLogoutCommand(a))
	cmd.AddCommand(newSessionRefreshCommand(a))
	cmd.AddCommand(newSessionStatusCommand(a))
	return cmd
}

func newSessionLoginCommand(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = p
			}
			return a.withSession(cmd.Context(), func(ctx context.Context, sessions *service.SessionManager) error {
				user, err := sessions.Login(ctx, email, password)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "signed in as %s (%s)\n", user.DisplayName(), user.Role)
				fmt.Fprintf(out, "landing: %s\n", domain.LandingPath(user.Role))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSessionLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context, sessions *service.SessionManager) error {
				if err := sessions.Logout(ctx); err != nil {
					a.log.Warn().Err(err).Msg("stored session was not fully cleared")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func newSessionRefreshCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token for a fresh one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context, sessions *service.SessionManager) error {
				if err := sessions.Refresh(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "token refreshed")
				printExpiry(cmd.OutOrStdout(), sessions.Snapshot().Token)
				return nil
			})
		},
	}
}

func newSessionStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context, sessions *service.SessionManager) error {
				snap := sessions.Snapshot()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "state: %s\n", snap.State)
				if !snap.Authenticated() {
					return nil
				}
				fmt.Fprintf(out, "user: %s (%s)\n", snap.User.DisplayName(), snap.User.Role)
				fmt.Fprintf(out, "landing: %s\n", domain.LandingPath(snap.User.Role))
				printExpiry(out, snap.Token)
				return nil
			})
		},
	}
}

func newOpenCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Show what the route guard decides for a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			role, ok := domain.RouteRole(path)
			if !ok {
				return fmt.Errorf("%s is not a guarded view", path)
			}
			return a.withSession(cmd.Context(), func(ctx context.Context, sessions *service.SessionManager) error {
				d := domain.Decide(sessions.Snapshot(), role)
				out := cmd.OutOrStdout()
				switch d.Kind {
				case domain.DecisionRender:
					fmt.Fprintf(out, "render %s as %s\n", path, d.User.DisplayName())
				case domain.DecisionRedirect:
					fmt.Fprintf(out, "redirect %s\n", d.Path)
				default:
					fmt.Fprintln(out, "loading")
				}
				return nil
			})
		},
	}
}

// withSession opens the configured store, restores the stored session and
// hands it to fn.
func (a *app) withSession(ctx context.Context, fn func(context.Context, *service.SessionManager) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	backend, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer backend.close()

	sessions := a.newSessionManager(backend)
	sessions.Hydrate(ctx)
	return fn(ctx, sessions)
}

func printExpiry(w io.Writer, token string) {
	exp, ok := service.TokenExpiry(token)
	if !ok {
		return
	}
	fmt.Fprintf(w, "expires: %s (in %s)\n", exp.Format(time.RFC3339), time.Until(exp).Round(time.Second))
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
