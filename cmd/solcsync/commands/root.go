// Package commands implements the solcsync CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "solcsync",
	Short: "Synchronize Solidity compiler releases to object storage",
	Long: `solcsync reconciles versioned solc binaries against an S3 bucket.

It lists compiler versions either from the official release directory or
from a local directory of binaries, then uploads each missing version's
binary together with its SHA-256 hash file. Versions already present in
the bucket are skipped, so repeated runs are cheap and idempotent.

Use "solcsync [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/solcsync/config.yaml)")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
