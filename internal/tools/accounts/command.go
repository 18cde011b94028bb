package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/campusconnect/campus-connect-api/internal/domain"
	"github.com/campusconnect/campus-connect-api/internal/repository"
	"github.com/campusconnect/campus-connect-api/internal/service"
	"github.com/campusconnect/campus-connect-api/internal/tools/common"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func (o *options) command(action string) common.Command {
	return common.Command{Tool: "accounts", Action: action, CI: o.ci, Timeout: o.timeout, ExitCode: 3}
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "accounts", Short: "Out-of-band account administration"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newPromoteCommand(opts), newShowCommand(opts))
	return cmd
}

func newPromoteCommand(opts *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Grant the admin role to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Execute(opts.command("promote"), func(ctx context.Context) ([]string, error) {
				db, err := common.OpenDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)
				admin := service.NewAccountAdminService(repository.NewAccountRepository(db), slog.Default())
				return Promote(ctx, admin, email)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the account to promote")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newShowCommand(opts *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the public profile of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Execute(opts.command("show"), func(ctx context.Context) ([]string, error) {
				db, err := common.OpenDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)
				return Show(ctx, repository.NewAccountRepository(db), email)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the account")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func Promote(ctx context.Context, admin service.AccountAdminInterface, email string) ([]string, error) {
	profile, err := admin.PromoteToAdmin(ctx, email)
	if err != nil {
		return nil, err
	}
	return append([]string{"role updated"}, describe(profile)...), nil
}

func Show(ctx context.Context, accounts repository.AccountRepository, email string) ([]string, error) {
	account, err := accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	return describe(account.Profile()), nil
}

func describe(p *domain.AccountProfile) []string {
	return []string{
		"id: " + p.ID,
		"email: " + p.Email,
		"display_name: " + p.DisplayName,
		"role: " + string(p.Role),
		fmt.Sprintf("verified: %t", p.IsVerified),
	}
}
