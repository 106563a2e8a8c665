package export

import (
	"encoding/csv"
	"io"

	"github.com/nao1215/blackbird/internal/model"
)

// CSVWriter writes one name,url row per found account.
type CSVWriter struct{}

// Write implements Writer.
func (c *CSVWriter) Write(w io.Writer, rs *model.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "url"}); err != nil {
		return err
	}
	for _, o := range rs.Found() {
		if err := cw.Write([]string{o.Site, o.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
