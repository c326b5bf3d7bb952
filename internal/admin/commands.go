// Package admin implements accountctl, the operator tool for the account
// service. It talks to the same storage as the server, not to its HTTP API.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/httpapi"
	"github.com/dmitrijs2005/gophaccount/internal/server/mail"
	"github.com/dmitrijs2005/gophaccount/internal/server/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Env opens storage and services for a single command run.
type Env struct {
	Config *config.Config
	Log    logging.Logger
	Out    io.Writer

	backend  *server.Backend
	services httpapi.Services
}

func (e *Env) open(ctx context.Context) error {
	if e.backend != nil {
		return nil
	}
	b, err := server.OpenBackend(ctx, e.Config, e.Log)
	if err != nil {
		return err
	}
	exporter, err := server.NewExporter(ctx, e.Config)
	if err != nil {
		_ = b.Close()
		return err
	}
	svc, err := server.NewServices(b, e.Config, e.Log, metrics.New(prometheus.NewRegistry()),
		mail.NewLogMailer(e.Log), exporter)
	if err != nil {
		_ = b.Close()
		return err
	}
	e.backend, e.services = b, svc
	return nil
}

// Close releases whatever the commands opened.
func (e *Env) Close() error {
	if e.backend == nil {
		return nil
	}
	err := e.backend.Close()
	e.backend = nil
	return err
}

func NewRootCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "accountctl",
		Short:         "Operator tool for the account service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand(env))
	cmd.AddCommand(newSetPasswordCommand(env))
	cmd.AddCommand(newArchiveCommand(env))
	cmd.AddCommand(newShowArchivedCommand(env))
	cmd.AddCommand(newPurgeSessionsCommand(env))
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newMigrateCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if err := env.open(ctx); err != nil {
				return err
			}
			if err := env.backend.Migrate(ctx); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			fmt.Fprintln(env.Out, "migrations applied")
			return nil
		},
	}
}

func newSetPasswordCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set-password <username>",
		Short: "Replace a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if err := env.open(ctx); err != nil {
				return err
			}
			user, err := env.services.Credentials.GetByUsername(ctx, args[0])
			if err != nil {
				return fmt.Errorf("user %q: %w", args[0], err)
			}

			password, err := getNewPassword(env.Out)
			if err != nil {
				return err
			}
			if err := env.services.Credentials.UpdatePassword(ctx, user.ID, password); err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "password updated for %s\n", user.Username)
			return nil
		},
	}
}

func parseUserID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q: %w", s, err)
	}
	return id, nil
}

func newArchiveCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <user-id>",
		Short: "Move a user and their profile into the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			if err := env.open(ctx); err != nil {
				return err
			}
			rec, err := env.services.Archive.ArchiveUser(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "archived %s at %s\n", rec.User.Username, rec.ArchivedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func newShowArchivedCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show-archived <user-id>",
		Short: "Print an archived user record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			if err := env.open(ctx); err != nil {
				return err
			}
			rec, err := env.services.Archive.GetArchived(ctx, id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(env.Out)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newPurgeSessionsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if err := env.open(ctx); err != nil {
				return err
			}
			n, err := env.services.Sessions.Purge(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "%d expired sessions removed\n", n)
			return nil
		},
	}
}
