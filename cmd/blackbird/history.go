package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/blackbird/internal/database"
	"github.com/nao1215/blackbird/internal/model"
)

// historyDateLayout formats run timestamps in listings.
const historyDateLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [username]",
		Short: "Show past searches stored in the history database",
		Long: `History lists the searches saved by previous runs.

Without a username it lists every searched username. With a username it
lists the runs for that username and every site that ever reported the
account. --diff compares the found accounts of two runs.

Examples:
  # List searched usernames
  blackbird history

  # List the runs for a username
  blackbird history alice

  # Compare the latest two runs
  blackbird history alice --diff

  # Compare the latest run with run 3
  blackbird history alice --diff --with-run-id 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("diff", "d", false,
		"Compare the found accounts of the latest run with an earlier one")
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest run with this run ID instead of the previous one")
	addDBFlag(cmd)

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	if (diff || withRunID != 0) && len(args) == 0 {
		return errors.New("a username is required to compare runs")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(out, "No search history found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	switch {
	case len(args) == 0:
		return listUsernames(ctx, out, db)
	case diff || withRunID != 0:
		return compareRuns(ctx, out, db, args[0], withRunID)
	default:
		return listRuns(ctx, out, db, args[0])
	}
}

func listUsernames(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	usernames, err := db.ListUsernames(ctx)
	if err != nil {
		return err
	}
	if len(usernames) == 0 {
		fmt.Fprintln(out, "No search history found.")
		return nil
	}

	fmt.Fprintf(out, "Searched usernames (%d):\n\n", len(usernames))
	for _, u := range usernames {
		fmt.Fprintf(out, "  • %s\n", u)
	}
	fmt.Fprintln(out, "\nUse 'blackbird history <username>' to see the runs for a username.")
	return nil
}

func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, username string) error {
	runs, err := db.GetRunHistory(ctx, username)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No search history found for %s\n", username)
		return nil
	}

	fmt.Fprintf(out, "Search history for %s (%d runs):\n\n", username, len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-6s  %-6s  %-6s  %s\n", "ID", "Date", "Sites", "Found", "Errors", "Elapsed")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 64))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-6d  %-6d  %-6d  %.1fs\n",
			r.ID,
			r.Timestamp.Local().Format(historyDateLayout),
			r.Total,
			r.Found,
			r.Errors,
			r.Elapsed.Seconds(),
		)
	}

	sightings, err := db.GetSightings(ctx, username)
	if err != nil {
		return err
	}
	if len(sightings) > 0 {
		fmt.Fprintf(out, "\nAccounts seen (%d):\n\n", len(sightings))
		for _, s := range sightings {
			fmt.Fprintf(out, "  %-20s  %-50s  %d/%d runs, last %s\n",
				s.Site, s.URL, s.Count, len(runs), s.LastSeen.Local().Format(historyDateLayout))
		}
	}

	fmt.Fprintf(out, "\nUse 'blackbird history %s --diff' to compare the latest two runs.\n", username)
	return nil
}

func compareRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, username string, withRunID int64) error {
	latest, err := db.GetLatestRuns(ctx, username, 2)
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return fmt.Errorf("no search history found for %s", username)
	}

	newer := latest[0]
	var older *model.ResultSet
	switch {
	case withRunID != 0:
		older, err = db.GetRun(ctx, withRunID)
		if err != nil {
			return err
		}
		if older.Username != username {
			return fmt.Errorf("run %d searched %q, not %q", withRunID, older.Username, username)
		}
	case len(latest) < 2:
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(latest))
	default:
		older = latest[1]
	}

	writeDiff(out, username, older, newer, model.CompareFound(older, newer))
	return nil
}

func writeDiff(out io.Writer, username string, older, newer *model.ResultSet, diff *model.Diff) {
	fmt.Fprintf(out, "Run comparison: %s\n", username)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "\nPrevious run: %s (%d found)\n", older.Date.Local().Format(historyDateLayout), len(older.Found()))
	fmt.Fprintf(out, "Current run:  %s (%d found)\n", newer.Date.Local().Format(historyDateLayout), len(newer.Found()))

	if !diff.HasChanges() {
		fmt.Fprintf(out, "\nNo changes: %d accounts found in both runs\n", len(diff.Unchanged))
		return
	}

	if len(diff.Added) > 0 {
		fmt.Fprintf(out, "\nNew accounts (%d):\n", len(diff.Added))
		for _, o := range diff.Added {
			fmt.Fprintf(out, "  [+] %s: %s\n", o.Site, o.URL)
		}
	}
	if len(diff.Removed) > 0 {
		fmt.Fprintf(out, "\nGone accounts (%d):\n", len(diff.Removed))
		for _, o := range diff.Removed {
			fmt.Fprintf(out, "  [-] %s: %s\n", o.Site, o.URL)
		}
	}
	if len(diff.Unchanged) > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d accounts\n", len(diff.Unchanged))
	}
}
