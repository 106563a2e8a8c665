package model

import "time"

// Date layouts used for export file names and report headers.
const (
	FileDateLayout   = "01_02_2006"
	PrettyDateLayout = "January 02, 2006"
)

// Counts summarizes the statuses of a ResultSet.
type Counts struct {
	Total    int `json:"total"`
	Found    int `json:"found"`
	NotFound int `json:"not_found"`
	Error    int `json:"error"`
	None     int `json:"none"`
}

// ResultSet holds every outcome of one run, in site list order.
type ResultSet struct {
	Username string        `json:"username"`
	Date     time.Time     `json:"date"`
	Elapsed  time.Duration `json:"elapsed"`
	Outcomes []Outcome     `json:"outcomes"`
}

// NewResultSet creates a ResultSet for the given run.
func NewResultSet(username string, date time.Time, outcomes []Outcome, elapsed time.Duration) *ResultSet {
	return &ResultSet{
		Username: username,
		Date:     date,
		Elapsed:  elapsed,
		Outcomes: outcomes,
	}
}

// Found returns the FOUND outcomes in result set order.
func (r *ResultSet) Found() []Outcome {
	found := make([]Outcome, 0)
	for _, o := range r.Outcomes {
		if o.IsFound() {
			found = append(found, o)
		}
	}
	return found
}

// Counts tallies the outcomes by status.
func (r *ResultSet) Counts() Counts {
	c := Counts{Total: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusFound:
			c.Found++
		case StatusNotFound:
			c.NotFound++
		case StatusError:
			c.Error++
		default:
			c.None++
		}
	}
	return c
}

// FileDate returns the run date formatted for export file names.
func (r *ResultSet) FileDate() string {
	return r.Date.Format(FileDateLayout)
}

// PrettyDate returns the run date formatted for report headers.
func (r *ResultSet) PrettyDate() string {
	return r.Date.Format(PrettyDateLayout)
}

// Diff describes how the found accounts changed between two runs.
type Diff struct {
	// Added are accounts found in the newer run only.
	Added []Outcome

	// Removed are accounts found in the older run only.
	Removed []Outcome

	// Unchanged are accounts found in both runs.
	Unchanged []Outcome
}

// HasChanges reports whether any account appeared or disappeared.
func (d *Diff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// CompareFound compares the found accounts of two runs by site name.
// The outcomes of each group keep the order of the run they come from.
func CompareFound(older, newer *ResultSet) *Diff {
	oldSites := make(map[string]bool)
	for _, o := range older.Found() {
		oldSites[o.Site] = true
	}
	newSites := make(map[string]bool)

	diff := &Diff{}
	for _, o := range newer.Found() {
		newSites[o.Site] = true
		if oldSites[o.Site] {
			diff.Unchanged = append(diff.Unchanged, o)
		} else {
			diff.Added = append(diff.Added, o)
		}
	}
	for _, o := range older.Found() {
		if !newSites[o.Site] {
			diff.Removed = append(diff.Removed, o)
		}
	}
	return diff
}
