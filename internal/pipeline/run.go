package pipeline

import "github.com/nao1215/blackbird/internal/model"

// Run carries the state of one username search through the pipeline.
type Run struct {
	// Username is the account name to look for.
	Username string

	// Sites is the site list to check. It is set by LoadListStep or
	// handed over from a previous run.
	Sites *model.SiteList

	// Results holds the outcomes once SearchStep has run.
	Results *model.ResultSet

	// Exported lists the written export files.
	Exported []string

	// ExportErrors collects failed exports. A failed export does not fail
	// the run.
	ExportErrors []error

	// HistoryID is the history database ID of the saved run, 0 if unsaved.
	HistoryID int64

	// PerformedSteps lists the names of the executed steps, in order.
	PerformedSteps []string

	// Error is the error of the step that stopped the run.
	Error error
}

// NewRun creates a Run for username.
func NewRun(username string) *Run {
	return &Run{Username: username}
}
