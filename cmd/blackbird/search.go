package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/blackbird/internal/config"
	"github.com/nao1215/blackbird/internal/console"
	"github.com/nao1215/blackbird/internal/database"
	"github.com/nao1215/blackbird/internal/export"
	"github.com/nao1215/blackbird/internal/log"
	"github.com/nao1215/blackbird/internal/model"
	"github.com/nao1215/blackbird/internal/pipeline"
	"github.com/nao1215/blackbird/internal/probe"
	"github.com/nao1215/blackbird/internal/search"
	"github.com/nao1215/blackbird/internal/sitelist"
	"github.com/nao1215/blackbird/internal/transport"
)

// runSearchCmd executes a username search.
func runSearchCmd(cmd *cobra.Command, _ []string) error {
	about, err := cmd.Flags().GetBool("about")
	if err != nil {
		return err
	}
	if about {
		newPrinter(cmd, false, false).About()
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, closeLog := setupLogger(cmd, cfg)
	defer closeLog()

	printer := newPrinter(cmd, cfg.Verbose, cfg.NoColor)
	printer.Banner()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSearch(ctx, cfg, printer, logger)
}

// newPrinter creates the console printer for cmd's output.
func newPrinter(cmd *cobra.Command, verbose, noColor bool) *console.Printer {
	opts := []console.Option{console.WithVerbose(verbose)}
	if noColor {
		opts = append(opts, console.WithColor(false))
	}
	return console.NewPrinter(cmd.OutOrStdout(), opts...)
}

// setupLogger creates the run logger. A log file that cannot be opened is
// reported and skipped.
func setupLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func()) {
	opts := log.Options{
		Console: cmd.ErrOrStderr(),
		Verbose: cfg.Verbose,
	}

	closer := func() {}
	if cfg.LogFile != "" {
		f, err := log.OpenLogFile(cfg.LogFile)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		} else {
			opts.File = f
			closer = func() { _ = f.Close() } //nolint:errcheck // nothing left to report to
		}
	}
	return log.NewLogger(opts), closer
}

// runSearch refreshes and loads the site list once, then runs the search
// pipeline for every username.
func runSearch(ctx context.Context, cfg *config.Config, printer *console.Printer, logger *slog.Logger) error {
	proxyURL, stopProxy, err := setupProxy(ctx, cfg, printer, logger)
	if err != nil {
		return err
	}
	defer stopProxy()

	client, err := transport.NewHTTPClient(transport.Options{
		Timeout:     cfg.Timeout,
		ProxyURL:    proxyURL,
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	store := sitelist.NewStore(cfg.ListFile, cfg.ListURL,
		sitelist.WithHTTPClient(client),
		sitelist.WithLogger(logger),
	)

	sites, err := prepareSiteList(ctx, cfg, store, printer, logger)
	if err != nil {
		return err
	}

	var history pipeline.HistoryStore
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("history disabled: failed to open database", "dir", cfg.DBDir, "error", err)
		} else {
			defer db.Close()
			history = db
		}
	}

	prober := probe.NewProber(client,
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithMaxBodySize(cfg.MaxBodySize),
		probe.WithTimeout(cfg.Timeout),
		probe.WithLogger(logger),
	)
	formats := exportFormats(cfg)

	bp := pipeline.NewBatchProcessor(
		func(username string) *pipeline.Pipeline {
			searcher := search.New(prober,
				search.WithConcurrency(cfg.Concurrency),
				search.WithLogger(logger),
				search.WithOutcomeCallback(printer.Outcome),
			)

			p := pipeline.New(pipeline.WithLogger(logger))
			p.AddSteps(
				pipeline.NewSearchStep(searcher, printer),
				pipeline.NewExportStep(cfg.OutputDir, formats, printer, logger),
			)
			if history != nil {
				p.AddStep(pipeline.NewHistoryStep(history, logger))
			}
			logger.Debug("search pipeline ready", "username", username, "steps", p.StepNames())
			return p
		},
		pipeline.WithBatchLogger(logger),
		pipeline.WithConcurrency(cfg.UserConcurrency),
	)

	runs, err := bp.ProcessBatch(ctx, cfg.Usernames, sites)
	if err != nil {
		return err
	}

	var errs []error
	for _, run := range runs {
		if run.Error != nil {
			errs = append(errs, fmt.Errorf("search for %q failed: %w", run.Username, run.Error))
		}
	}
	return errors.Join(errs...)
}

// prepareSiteList refreshes the local site list unless disabled and loads it.
func prepareSiteList(ctx context.Context, cfg *config.Config, store *sitelist.Store, printer *console.Printer, logger *slog.Logger) (*model.SiteList, error) {
	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewRefreshListStep(store, cfg.SkipUpdate, printer, logger),
		pipeline.NewLoadListStep(store, logger),
	)

	run := pipeline.NewRun("")
	if err := p.Execute(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to load site list %s: %w", store.Path(), err)
	}
	return run.Sites, nil
}

// setupProxy resolves the proxy URL for the run. With --tor it starts the
// embedded daemon; SOCKS proxies are checked before any probe is sent.
// The returned function releases whatever was started.
func setupProxy(ctx context.Context, cfg *config.Config, printer *console.Printer, logger *slog.Logger) (string, func(), error) {
	noop := func() {}

	if !cfg.UseTor {
		addr, ok := transport.SOCKSAddress(cfg.Proxy)
		if ok {
			if status := transport.CheckSOCKS5(ctx, addr); status != transport.ProxyStatusOK {
				return "", noop, fmt.Errorf("proxy check failed for %s: %w", addr, status.Error())
			}
			logger.Info("SOCKS5 proxy verified", "address", addr)
		}
		return cfg.Proxy, noop, nil
	}

	printer.Info("🧅 Starting embedded Tor daemon...")
	printer.Info("   This may take 1-3 minutes while Tor bootstraps.")

	tor := transport.NewEmbeddedTor(transport.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := tor.Start(ctx); err != nil {
		return "", noop, err
	}
	stop := func() {
		logger.Info("stopping embedded Tor daemon")
		if err := tor.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}

	if status := transport.CheckSOCKS5(ctx, tor.SocksAddr()); status != transport.ProxyStatusOK {
		stop()
		return "", noop, fmt.Errorf("embedded Tor proxy check failed: %w", status.Error())
	}
	proxyURL, err := tor.ProxyURL()
	if err != nil {
		stop()
		return "", noop, err
	}

	logger.Info("embedded Tor daemon started", "socks_addr", tor.SocksAddr())
	printer.Info("🧅 Tor is ready: " + tor.SocksAddr())
	return proxyURL, stop, nil
}

// exportFormats returns the formats selected in cfg.
func exportFormats(cfg *config.Config) []export.Format {
	var formats []export.Format
	for _, f := range []struct {
		on     bool
		format export.Format
	}{
		{cfg.CSV, export.FormatCSV},
		{cfg.PDF, export.FormatPDF},
		{cfg.JSON, export.FormatJSON},
		{cfg.Markdown, export.FormatMarkdown},
		{cfg.XLSX, export.FormatXLSX},
	} {
		if f.on {
			formats = append(formats, f.format)
		}
	}
	return formats
}
