package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bookstore-api/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bookstorectl",
	Short: "Operator tooling for the Bookstore Management API",
	Long: `bookstorectl manages a Bookstore Management API deployment.

Commands:
  migrate  - Apply the PostgreSQL schema
  seed     - Load demo authors, books and orders
  verify   - Check a running deployment
  login    - Start a local operator session`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Init("development", level)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}
