package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/blackbird/internal/config"
	"github.com/nao1215/blackbird/internal/sitelist"
	"github.com/nao1215/blackbird/internal/transport"
)

// NewUpdateCmd creates the update command.
func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Download the latest WhatsMyName site list",
		Long: `Update downloads the site list and replaces the local copy, whether or
not it changed. A search refreshes the list on its own; use this command to
repair a broken local copy or to prefetch the list.

Examples:
  # Download the list into the default cache location
  blackbird update

  # Download a fork of the list to a custom path
  blackbird update --list-url https://example.com/wmn-data.json --list-file ./wmn-data.json`,
		Args: cobra.NoArgs,
		RunE: runUpdateCmd,
	}

	addListFlags(cmd)
	cmd.Flags().IntP("timeout", "t", int(config.DefaultTimeout.Seconds()),
		"Timeout in seconds for the download")
	cmd.Flags().String("proxy", "",
		"Proxy URL for the download (http, https, socks5 or socks5h)")

	return cmd
}

func runUpdateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidTimeout)
	}
	if cfg.Proxy != "" && !config.IsSupportedProxy(cfg.Proxy) {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidProxy)
	}

	logger, closeLog := setupLogger(cmd, cfg)
	defer closeLog()
	printer := newPrinter(cmd, cfg.Verbose, cfg.NoColor)

	client, err := transport.NewHTTPClient(transport.Options{
		Timeout:  cfg.Timeout,
		ProxyURL: cfg.Proxy,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	store := sitelist.NewStore(cfg.ListFile, cfg.ListURL,
		sitelist.WithHTTPClient(client),
		sitelist.WithLogger(logger),
	)

	printer.Info("🌐 Downloading WhatsMyName list")
	if err := store.Download(cmd.Context()); err != nil {
		return fmt.Errorf("failed to download site list: %w", err)
	}

	list, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to read downloaded site list: %w", err)
	}
	printer.Saved(store.Path())
	printer.Info(fmt.Sprintf("✔ %d sites, hash %s", list.Len(), list.Hash))
	return nil
}
