package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/blackbird/internal/model"
)

// Format is an export file format. Its value is the file extension.
type Format string

// Supported formats.
const (
	FormatCSV      Format = "csv"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatXLSX     Format = "xlsx"
)

// ErrUnknownFormat is returned for formats without a writer.
var ErrUnknownFormat = errors.New("unknown export format")

// Writer renders a result set in one format.
type Writer interface {
	Write(w io.Writer, rs *model.ResultSet) error
}

// NewWriter returns the writer for format.
func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatPDF:
		return &PDFWriter{}, nil
	case FormatJSON:
		return &JSONWriter{Indent: "  "}, nil
	case FormatMarkdown:
		return &MarkdownWriter{}, nil
	case FormatXLSX:
		return &XLSXWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}

// ExportError describes a failed export.
type ExportError struct {
	Format Format
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export %s to %s: %v", e.Format, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// FileName returns <username>_<MM_DD_YYYY>_blackbird.<ext> for rs.
// Path separators in the username are replaced so the file always lands in
// the output directory.
func FileName(rs *model.ResultSet, format Format) string {
	username := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, rs.Username)
	return fmt.Sprintf("%s_%s_blackbird.%s", username, rs.FileDate(), format)
}

// Save writes rs in format to dir, creating dir when missing, and returns
// the file path. A partially written file is removed on failure.
func Save(dir string, format Format, rs *model.ResultSet) (string, error) {
	path := filepath.Join(dir, FileName(rs, format))

	w, err := NewWriter(format)
	if err != nil {
		return "", &ExportError{Format: format, Path: path, Err: err}
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", &ExportError{Format: format, Path: path, Err: err}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // Output directory is user-provided
	if err != nil {
		return "", &ExportError{Format: format, Path: path, Err: err}
	}

	if err := w.Write(f, rs); err != nil {
		_ = f.Close()       //nolint:errcheck // Write error takes precedence
		_ = os.Remove(path) //nolint:errcheck // Best effort cleanup
		return "", &ExportError{Format: format, Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path) //nolint:errcheck // Best effort cleanup
		return "", &ExportError{Format: format, Path: path, Err: err}
	}
	return path, nil
}
