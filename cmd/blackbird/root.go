package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/blackbird/internal/config"
)

// NewRootCmd creates the root command. Running it without a subcommand
// performs a username search.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blackbird",
		Short: "Search for accounts by username in social networks",
		Long: `Blackbird is an OSINT tool to search for accounts by username.

It checks every site of the WhatsMyName list concurrently and reports the
profiles that exist. Results can be exported as CSV, PDF, JSON, Markdown
or XLSX, and every run is kept in a local history database.

Examples:
  # Search a username
  blackbird -u alice

  # Search two usernames and export CSV and PDF reports
  blackbird -u alice -u bob --csv --pdf

  # Route probes through a SOCKS5 proxy with 50 probes at a time
  blackbird -u alice --proxy socks5://127.0.0.1:9050 --concurrency 50

  # Route probes through an embedded Tor daemon
  blackbird -u alice --tor`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSearchCmd,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Show verbose output")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" in current or home directory)")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	addSearchFlags(cmd)

	cmd.AddCommand(NewUpdateCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
