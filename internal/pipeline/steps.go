package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/blackbird/internal/export"
	"github.com/nao1215/blackbird/internal/model"
	"github.com/nao1215/blackbird/internal/sitelist"
)

// ErrNoSiteList is returned by SearchStep when no site list was loaded.
var ErrNoSiteList = errors.New("no site list loaded")

// Notifier receives user-facing progress messages.
type Notifier interface {
	Info(message string)
	Start(username string)
	Completed(rs *model.ResultSet)
	NoAccounts()
	Saved(path string)
	Error(message string, err error)
}

// ListRefresher brings the local site list up to date.
type ListRefresher interface {
	RefreshIfStale(ctx context.Context) (sitelist.RefreshResult, error)
}

// ListLoader reads the local site list.
type ListLoader interface {
	Load() (*model.SiteList, error)
}

// Searcher checks every site of a list for username.
type Searcher interface {
	Run(ctx context.Context, username string, list *model.SiteList) *model.ResultSet
}

// HistoryStore persists finished runs.
type HistoryStore interface {
	SaveRun(ctx context.Context, rs *model.ResultSet) (int64, error)
}

// nopNotifier discards every message.
type nopNotifier struct{}

func (nopNotifier) Info(string)                {}
func (nopNotifier) Start(string)               {}
func (nopNotifier) Completed(*model.ResultSet) {}
func (nopNotifier) NoAccounts()                {}
func (nopNotifier) Saved(string)               {}
func (nopNotifier) Error(string, error)        {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// RefreshListStep checks the local site list against the remote one and
// downloads it when it changed or is missing. A failed refresh is logged
// and the run continues with whatever list is on disk.
type RefreshListStep struct {
	refresher ListRefresher
	skip      bool
	notifier  Notifier
	logger    *slog.Logger
}

// NewRefreshListStep creates a RefreshListStep. With skip set the step only
// announces that the update was skipped.
func NewRefreshListStep(refresher ListRefresher, skip bool, notifier Notifier, logger *slog.Logger) *RefreshListStep {
	return &RefreshListStep{
		refresher: refresher,
		skip:      skip,
		notifier:  orNop(notifier),
		logger:    orDefault(logger),
	}
}

// Name returns the step name.
func (s *RefreshListStep) Name() string {
	return "refresh-list"
}

// Do implements Step.
func (s *RefreshListStep) Do(ctx context.Context, _ *Run) error {
	if s.skip {
		s.notifier.Info("⏭ Skipping update...")
		return nil
	}

	s.notifier.Info("🔄 Checking for updates...")
	result, err := s.refresher.RefreshIfStale(ctx)
	if err != nil {
		s.logger.Warn("failed to refresh site list", "error", err)
		s.notifier.Error("Couldn't update the site list", err)
		return nil
	}

	switch result {
	case sitelist.RefreshUpToDate:
		s.notifier.Info("✔ List is up to date")
	case sitelist.RefreshUpdated:
		s.notifier.Info("🔄 Site list updated")
	case sitelist.RefreshDownloaded:
		s.notifier.Info("🌐 Downloaded WhatsMyName list")
	}
	return nil
}

// LoadListStep reads the local site list into the run. Without a list
// there is nothing to search, so a failure stops the pipeline.
type LoadListStep struct {
	loader ListLoader
	logger *slog.Logger
}

// NewLoadListStep creates a LoadListStep.
func NewLoadListStep(loader ListLoader, logger *slog.Logger) *LoadListStep {
	return &LoadListStep{
		loader: loader,
		logger: orDefault(logger),
	}
}

// Name returns the step name.
func (s *LoadListStep) Name() string {
	return "load-list"
}

// Do implements Step.
func (s *LoadListStep) Do(_ context.Context, run *Run) error {
	list, err := s.loader.Load()
	if err != nil {
		return err
	}
	run.Sites = list
	s.logger.Debug("site list loaded",
		"sites", list.Len(),
		"source", list.Source,
		"hash", list.Hash,
	)
	return nil
}

// SearchStep checks every site in the run's list for the username.
type SearchStep struct {
	searcher Searcher
	notifier Notifier
}

// NewSearchStep creates a SearchStep.
func NewSearchStep(searcher Searcher, notifier Notifier) *SearchStep {
	return &SearchStep{
		searcher: searcher,
		notifier: orNop(notifier),
	}
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return "search"
}

// Do implements Step.
func (s *SearchStep) Do(ctx context.Context, run *Run) error {
	if run.Sites == nil {
		return ErrNoSiteList
	}
	s.notifier.Start(run.Username)
	run.Results = s.searcher.Run(ctx, run.Username, run.Sites)
	s.notifier.Completed(run.Results)
	return nil
}

// ExportStep writes the run's results in every selected format. Nothing is
// exported when no account was found. It also runs after a cancelled
// search, exporting what was found until then.
type ExportStep struct {
	dir      string
	formats  []export.Format
	notifier Notifier
	logger   *slog.Logger
}

// NewExportStep creates an ExportStep writing formats into dir.
func NewExportStep(dir string, formats []export.Format, notifier Notifier, logger *slog.Logger) *ExportStep {
	return &ExportStep{
		dir:      dir,
		formats:  formats,
		notifier: orNop(notifier),
		logger:   orDefault(logger),
	}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

func (s *ExportStep) final() {}

// Do implements Step.
func (s *ExportStep) Do(_ context.Context, run *Run) error {
	if run.Results == nil {
		return nil
	}
	if len(run.Results.Found()) == 0 {
		s.notifier.NoAccounts()
		return nil
	}

	for _, format := range s.formats {
		path, err := export.Save(s.dir, format, run.Results)
		if err != nil {
			s.logger.Error("export failed",
				"username", run.Username,
				"format", string(format),
				"error", err,
			)
			s.notifier.Error("Couldn't export "+string(format)+" results", err)
			run.ExportErrors = append(run.ExportErrors, err)
			continue
		}
		s.logger.Info("results exported",
			"username", run.Username,
			"format", string(format),
			"path", path,
		)
		s.notifier.Saved(path)
		run.Exported = append(run.Exported, path)
	}
	return nil
}

// HistoryStep saves the run in the history database. A failed save is
// logged and the run continues. Like ExportStep it runs after a cancelled
// search.
type HistoryStep struct {
	store  HistoryStore
	logger *slog.Logger
}

// NewHistoryStep creates a HistoryStep.
func NewHistoryStep(store HistoryStore, logger *slog.Logger) *HistoryStep {
	return &HistoryStep{
		store:  store,
		logger: orDefault(logger),
	}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

func (s *HistoryStep) final() {}

// Do implements Step.
func (s *HistoryStep) Do(ctx context.Context, run *Run) error {
	if run.Results == nil {
		return nil
	}
	id, err := s.store.SaveRun(ctx, run.Results)
	if err != nil {
		s.logger.Warn("failed to save run history",
			"username", run.Username,
			"error", err,
		)
		return nil
	}
	run.HistoryID = id
	s.logger.Debug("run saved to history",
		"username", run.Username,
		"run_id", id,
	)
	return nil
}
