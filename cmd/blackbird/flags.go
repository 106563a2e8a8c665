package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/blackbird/internal/config"
)

// addSearchFlags registers the flags of a username search.
func addSearchFlags(cmd *cobra.Command) {
	// Target
	cmd.Flags().StringSliceP("username", "u", nil,
		"The given username to search (repeat or separate with commas for several)")
	cmd.Flags().BoolP("about", "a", false,
		"Show about information and exit")

	// Export
	cmd.Flags().Bool("csv", false, "Generate a CSV with the results")
	cmd.Flags().Bool("pdf", false, "Generate a PDF with the results")
	cmd.Flags().Bool("json", false, "Generate a JSON file with the results")
	cmd.Flags().Bool("markdown", false, "Generate a Markdown report with the results")
	cmd.Flags().Bool("xlsx", false, "Generate an XLSX workbook with the results")
	cmd.Flags().String("output-dir", config.DefaultOutputDir,
		"Directory for exported files (created if missing)")

	// Requests
	cmd.Flags().IntP("timeout", "t", int(config.DefaultTimeout/time.Second),
		"Timeout in seconds for each HTTP request")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of sites checked at the same time (0 checks every site at once)")
	cmd.Flags().Int("user-concurrency", config.DefaultUserConcurrency,
		"Number of usernames searched at the same time")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("proxy", "",
		"Proxy URL for every request (http, https, socks5 or socks5h)")
	cmd.Flags().Bool("tor", false,
		"Route every request through an embedded Tor daemon")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for the embedded Tor startup")

	// Site list
	addListFlags(cmd)
	cmd.Flags().Bool("no-update", false, "Don't update the site list")

	// Storage
	cmd.Flags().String("log-file", "", "Log file path (default: XDG state directory)")
	cmd.Flags().Bool("no-history", false, "Don't save this run in the history database")
	addDBFlag(cmd)
}

// addListFlags registers the site list location flags.
func addListFlags(cmd *cobra.Command) {
	cmd.Flags().String("list-file", "", "Local site list path (default: XDG cache directory)")
	cmd.Flags().String("list-url", config.DefaultListURL, "Remote site list URL")
}

// addDBFlag registers the history database directory flag.
func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")
}

// loadConfig builds the configuration from defaults, the configuration
// file and the flags set on cmd, in increasing order of precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg. Flags the command
// does not define are skipped.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var timeout int
	var noHistory bool

	errs := []error{
		setFlag(flags, "username", flags.GetStringSlice, &cfg.Usernames),
		setFlag(flags, "verbose", flags.GetBool, &cfg.Verbose),
		setFlag(flags, "no-color", flags.GetBool, &cfg.NoColor),
		setFlag(flags, "csv", flags.GetBool, &cfg.CSV),
		setFlag(flags, "pdf", flags.GetBool, &cfg.PDF),
		setFlag(flags, "json", flags.GetBool, &cfg.JSON),
		setFlag(flags, "markdown", flags.GetBool, &cfg.Markdown),
		setFlag(flags, "xlsx", flags.GetBool, &cfg.XLSX),
		setFlag(flags, "output-dir", flags.GetString, &cfg.OutputDir),
		setFlag(flags, "timeout", flags.GetInt, &timeout),
		setFlag(flags, "concurrency", flags.GetInt, &cfg.Concurrency),
		setFlag(flags, "user-concurrency", flags.GetInt, &cfg.UserConcurrency),
		setFlag(flags, "user-agent", flags.GetString, &cfg.UserAgent),
		setFlag(flags, "proxy", flags.GetString, &cfg.Proxy),
		setFlag(flags, "tor", flags.GetBool, &cfg.UseTor),
		setFlag(flags, "tor-timeout", flags.GetDuration, &cfg.TorStartupTimeout),
		setFlag(flags, "list-file", flags.GetString, &cfg.ListFile),
		setFlag(flags, "list-url", flags.GetString, &cfg.ListURL),
		setFlag(flags, "no-update", flags.GetBool, &cfg.SkipUpdate),
		setFlag(flags, "log-file", flags.GetString, &cfg.LogFile),
		setFlag(flags, "no-history", flags.GetBool, &noHistory),
		setFlag(flags, "db-dir", flags.GetString, &cfg.DBDir),
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if changed(flags, "timeout") {
		cfg.Timeout = time.Duration(timeout) * time.Second
	}
	if noHistory {
		cfg.SaveToDB = false
	}
	return nil
}

func changed(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// setFlag stores the value of flag name in dst when the user set it.
func setFlag[T any](flags *pflag.FlagSet, name string, get func(string) (T, error), dst *T) error {
	if !changed(flags, name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
