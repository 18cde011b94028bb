package migrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/campusconnect/campus-connect-api/internal/database"
	"github.com/campusconnect/campus-connect-api/internal/tools/common"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func (o *options) command(action string) common.Command {
	return common.Command{Tool: "migrate", Action: action, CI: o.ci, Timeout: o.timeout, ExitCode: 3}
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Execute(opts.command("up"), func(ctx context.Context) ([]string, error) {
				db, err := common.OpenDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)
				return Up(db)
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Execute(opts.command("status"), func(ctx context.Context) ([]string, error) {
				db, err := common.OpenDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)
				return Status(ctx, db)
			})
		},
	}
}

// Up applies the schema and reports which tables were created.
func Up(db *gorm.DB) ([]string, error) {
	pending := database.PendingMigrations(db)
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if len(pending) == 0 {
		return []string{"schema up to date", "tables created: none"}, nil
	}
	return []string{"schema migration applied", "tables created: " + strings.Join(pending, ", ")}, nil
}

func Status(ctx context.Context, db *gorm.DB) ([]string, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	pending := database.PendingMigrations(db)
	if len(pending) == 0 {
		return []string{"database reachable", "pending: none"}, nil
	}
	return []string{"database reachable", "pending: " + strings.Join(pending, ", ")}, nil
}
