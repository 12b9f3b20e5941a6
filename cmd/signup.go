package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"task-manager.com/task-manager/internal/client"
	"task-manager.com/task-manager/internal/http/validators"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadClientConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		creds := credentials(cfg)
		if err := validators.ValidateCredentials(creds, true); err != nil {
			return err
		}

		c := client.New(cfg.APIURL, client.WithLogger(log))
		session, err := c.SignUp(cmd.Context(), creds)
		if err != nil {
			return fmt.Errorf("sign up: %w", err)
		}
		defer func() { _ = c.SignOut(cmd.Context()) }()

		fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s (%s)\n", session.Email, session.UserID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signupCmd)
}
