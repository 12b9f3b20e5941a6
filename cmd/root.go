package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile  string
	email    string
	password string
)

var rootCmd = &cobra.Command{
	Use:           "task-manager",
	Short:         "Task and supplier manager",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&email, "email", "", "account email (defaults to TASKS_EMAIL)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "account password (defaults to TASKS_PASSWORD)")
}
