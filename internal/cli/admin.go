package cli

import (
	"github.com/spf13/cobra"

	"github.com/eleven-am/taskboard/internal/accounts"
)

// NewSetAdminPasswordCommand is set-admin-password on its own, for the standalone binary.
func NewSetAdminPasswordCommand() *cobra.Command {
	return Standalone(newSetAdminPasswordCmd())
}

func newSetAdminPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-admin-password",
		Short: "Create the admin account or reset its password",
		Long: `Reset the password of the configured admin user (admin / postgres by default),
creating it as an active superuser when it does not exist, then print the
credentials and the admin login URL.`,
		Args: cobra.NoArgs,
		RunE: runSetAdminPassword,
	}
}

func runSetAdminPassword(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, storm, err := openStorm(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	creds := accounts.Credentials{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
		Email:    cfg.Admin.Email,
	}

	created, err := accounts.NewService(storm.Users).SetAdminPassword(ctx, creds)
	if err != nil {
		return err
	}

	return accounts.PrintCredentials(cmd.OutOrStdout(), created, creds, cfg.AdminURL())
}
