// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inkpress",
	Short: "inkpress is a web backend for a publishing platform",
	Long: `inkpress is a web backend for a publishing platform that provides
user accounts, content posts and role-based authorization with an
approval workflow for elevating a user's roles.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
