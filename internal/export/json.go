package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/blackbird/internal/model"
)

// JSONWriter writes the whole result set, with the found accounts and the
// status counts lifted to the top level.
type JSONWriter struct {
	// Indent enables pretty-printed output when non-empty.
	Indent string
}

type jsonReport struct {
	Username       string          `json:"username"`
	Date           time.Time       `json:"date"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
	Counts         model.Counts    `json:"counts"`
	Found          []jsonAccount   `json:"found"`
	Outcomes       []model.Outcome `json:"outcomes"`
}

type jsonAccount struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category,omitempty"`
}

// Write implements Writer.
func (j *JSONWriter) Write(w io.Writer, rs *model.ResultSet) error {
	found := rs.Found()
	accounts := make([]jsonAccount, len(found))
	for i, o := range found {
		accounts[i] = jsonAccount{Name: o.Site, URL: o.URL, Category: o.Category}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}
	return enc.Encode(jsonReport{
		Username:       rs.Username,
		Date:           rs.Date,
		ElapsedSeconds: rs.Elapsed.Seconds(),
		Counts:         rs.Counts(),
		Found:          accounts,
		Outcomes:       rs.Outcomes,
	})
}
