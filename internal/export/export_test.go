package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/blackbird/internal/model"
)

// createTestResultSet returns a result set with two found accounts, one
// miss and one error, dated March 5, 2024. Mastodon is checked through its
// API and has a separate profile page.
func createTestResultSet() *model.ResultSet {
	outcomes := []model.Outcome{
		{Site: "GitHub", URL: "https://github.com/alice", Category: "coding", Status: model.StatusFound, StatusCode: 200},
		{Site: "Example", URL: "https://example.com/alice", Status: model.StatusNotFound, StatusCode: 404},
		{Site: "Mastodon", URL: mastodonAPI, ProfileURL: "https://mastodon.social/@alice", Category: "social", Status: model.StatusFound, StatusCode: 200},
		{Site: "Broken", URL: "https://broken.example/alice", Status: model.StatusError, Error: "dial tcp: timeout"},
	}
	date := time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)
	return model.NewResultSet("alice", date, outcomes, 1500*time.Millisecond)
}

const mastodonAPI = "https://mastodon.social/api/v1/accounts/lookup?acct=alice"

func emptyResultSet() *model.ResultSet {
	date := time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)
	return model.NewResultSet("nobody", date, []model.Outcome{
		{Site: "Example", URL: "https://example.com/nobody", Status: model.StatusNotFound},
	}, time.Second)
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	t.Run("returns a writer for every supported format", func(t *testing.T) {
		t.Parallel()

		for _, f := range []Format{FormatCSV, FormatPDF, FormatJSON, FormatMarkdown, FormatXLSX} {
			w, err := NewWriter(f)
			if err != nil {
				t.Errorf("NewWriter(%q) error = %v", f, err)
			}
			if w == nil {
				t.Errorf("NewWriter(%q) returned nil writer", f)
			}
		}
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		t.Parallel()

		_, err := NewWriter(Format("html"))
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and found accounts only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (&CSVWriter{}).Write(&buf, createTestResultSet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to read csv: %v", err)
		}
		want := [][]string{
			{"name", "url"},
			{"GitHub", "https://github.com/alice"},
			{"Mastodon", mastodonAPI},
		}
		if len(records) != len(want) {
			t.Fatalf("expected %d records, got %d: %v", len(want), len(records), records)
		}
		for i := range want {
			if strings.Join(records[i], ",") != strings.Join(want[i], ",") {
				t.Errorf("record %d = %v, want %v", i, records[i], want[i])
			}
		}
	})

	t.Run("writes only the header when nothing was found", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (&CSVWriter{}).Write(&buf, emptyResultSet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := buf.String(); got != "name,url\n" {
			t.Errorf("unexpected output %q", got)
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes counts and found accounts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (&JSONWriter{Indent: "  "}).Write(&buf, createTestResultSet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got struct {
			Username       string       `json:"username"`
			ElapsedSeconds float64      `json:"elapsed_seconds"`
			Counts         model.Counts `json:"counts"`
			Found          []struct {
				Name     string `json:"name"`
				URL      string `json:"url"`
				Category string `json:"category"`
			} `json:"found"`
			Outcomes []model.Outcome `json:"outcomes"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if got.Username != "alice" {
			t.Errorf("expected username alice, got %q", got.Username)
		}
		if got.ElapsedSeconds != 1.5 {
			t.Errorf("expected 1.5 elapsed seconds, got %v", got.ElapsedSeconds)
		}
		if got.Counts.Total != 4 || got.Counts.Found != 2 || got.Counts.Error != 1 {
			t.Errorf("unexpected counts %+v", got.Counts)
		}
		if len(got.Found) != 2 || got.Found[0].Name != "GitHub" || got.Found[1].Category != "social" {
			t.Errorf("unexpected found accounts %+v", got.Found)
		}
		if len(got.Outcomes) != 4 || got.Outcomes[3].Status != model.StatusError {
			t.Errorf("unexpected outcomes %+v", got.Outcomes)
		}
	})

	t.Run("does not escape HTML characters in URLs", func(t *testing.T) {
		t.Parallel()

		rs := createTestResultSet()
		rs.Outcomes[0].URL = "https://example.com/?a=1&b=2"

		var buf bytes.Buffer
		if err := (&JSONWriter{}).Write(&buf, rs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "a=1&b=2") {
			t.Errorf("expected raw ampersand in output: %s", buf.String())
		}
	})

	t.Run("writes an empty found array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (&JSONWriter{}).Write(&buf, emptyResultSet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"found":[]`) {
			t.Errorf("expected empty found array: %s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header, warning and grouped accounts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (&MarkdownWriter{}).Write(&buf, createTestResultSet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Blackbird Report",
			"`alice`",
			"March 05, 2024",
			"Blackbird can make mistakes",
			"## Results (2)",
			"### Coding",
			"### Social",
			"[https://github.com/alice](https://github.com/alice)",
			"[https://mastodon.social/@alice](https://mastodon.social/@alice)",
			"WhatsMyName",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "https://example.com/alice") {
			t.Error("expected NOT_FOUND site to be omitted")
		}
		if strings.Contains(output, mastodonAPI) {
			t.Error("expected the profile page instead of the probe URL")
		}
		if strings.Index(output, "### Coding") > strings.Index(output, "### Social") {
			t.Error("expected categories in alphabetical order")
		}
	})

	t.Run("writes a notice when nothing was found", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (&MarkdownWriter{}).Write(&buf, emptyResultSet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No accounts were found for the given username.") {
			t.Errorf("expected no accounts notice, got:\n%s", buf.String())
		}
	})
}

func TestGroupByCategory(t *testing.T) {
	t.Parallel()

	groups := groupByCategory([]model.Outcome{
		{Site: "B", Category: "social"},
		{Site: "A"},
		{Site: "C", Category: "social"},
		{Site: "D", Category: "coding"},
	})

	want := []struct {
		category string
		sites    string
	}{
		{"coding", "D"},
		{"other", "A"},
		{"social", "B,C"},
	}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, w := range want {
		names := make([]string, len(groups[i].outcomes))
		for j, o := range groups[i].outcomes {
			names[j] = o.Site
		}
		if groups[i].category != w.category || strings.Join(names, ",") != w.sites {
			t.Errorf("group %d = %s [%s], want %s [%s]", i, groups[i].category, strings.Join(names, ","), w.category, w.sites)
		}
	}
}

func TestPDFWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes a PDF document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (&PDFWriter{}).Write(&buf, createTestResultSet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
			t.Error("expected PDF signature")
		}
		if !bytes.Contains(buf.Bytes(), []byte("https://github.com/alice")) {
			t.Error("expected link annotation for found account")
		}
	})

	t.Run("long links are shortened but keep their target", func(t *testing.T) {
		t.Parallel()

		long := "https://example.com/users/" + strings.Repeat("a", 300)
		rs := model.NewResultSet("alice", time.Now(), []model.Outcome{
			{Site: "Example", URL: long, Status: model.StatusFound},
		}, time.Second)

		var buf bytes.Buffer
		if err := (&PDFWriter{}).Write(&buf, rs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Contains(buf.Bytes(), []byte(long)) {
			t.Error("expected the full URL as link target")
		}
	})

	t.Run("writes a PDF document when nothing was found", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (&PDFWriter{}).Write(&buf, emptyResultSet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
			t.Error("expected PDF signature")
		}
	})
}

func TestFitText(t *testing.T) {
	t.Parallel()

	// One unit per byte.
	width := func(s string) float64 { return float64(len(s)) }

	tests := []struct {
		name  string
		text  string
		width float64
		want  string
	}{
		{name: "text that fits is unchanged", text: "https://a.io/x", width: 20, want: "https://a.io/x"},
		{name: "text exactly at the width is unchanged", text: "abcdef", width: 6, want: "abcdef"},
		{name: "long text is cut with an ellipsis", text: "https://example.com/alice", width: 10, want: "https:/..."},
		{name: "no room leaves only the ellipsis", text: "abcdef", width: 2, want: "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := fitText(width, tt.text, tt.width); got != tt.want {
				t.Errorf("fitText(%q, %v) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestXLSXWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := (&XLSXWriter{}).Write(&buf, createTestResultSet()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	t.Run("results sheet lists found accounts", func(t *testing.T) {
		rows, err := f.GetRows(resultsSheet)
		if err != nil {
			t.Fatalf("GetRows() error = %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header and 2 rows, got %d: %v", len(rows), rows)
		}
		if rows[0][0] != "Name" || rows[1][0] != "GitHub" || rows[2][1] != "https://mastodon.social/@alice" {
			t.Errorf("unexpected rows %v", rows)
		}

		ok, link, err := f.GetCellHyperLink(resultsSheet, "B2")
		if err != nil {
			t.Fatalf("GetCellHyperLink() error = %v", err)
		}
		if !ok || link != "https://github.com/alice" {
			t.Errorf("expected hyperlink on B2, got %v %q", ok, link)
		}

		ok, link, err = f.GetCellHyperLink(resultsSheet, "B3")
		if err != nil {
			t.Fatalf("GetCellHyperLink() error = %v", err)
		}
		if !ok || link != "https://mastodon.social/@alice" {
			t.Errorf("expected profile page hyperlink on B3, got %v %q", ok, link)
		}
	})

	t.Run("summary sheet holds run metadata", func(t *testing.T) {
		rows, err := f.GetRows(summarySheet)
		if err != nil {
			t.Fatalf("GetRows() error = %v", err)
		}
		if len(rows) < 4 || rows[0][1] != "alice" || rows[3][1] != "2" {
			t.Errorf("unexpected summary rows %v", rows)
		}
	})
}

func TestFileName(t *testing.T) {
	t.Parallel()

	rs := createTestResultSet()
	if got := FileName(rs, FormatCSV); got != "alice_03_05_2024_blackbird.csv" {
		t.Errorf("FileName() = %q", got)
	}

	rs.Username = "../etc/passwd"
	if got := FileName(rs, FormatMarkdown); strings.ContainsAny(got, `/\`) {
		t.Errorf("expected separators to be replaced, got %q", got)
	}
}

func TestSave(t *testing.T) {
	t.Parallel()

	t.Run("writes the file into a new directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "reports")
		path, err := Save(dir, FormatCSV, createTestResultSet())
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if path != filepath.Join(dir, "alice_03_05_2024_blackbird.csv") {
			t.Errorf("unexpected path %q", path)
		}
		data, err := os.ReadFile(path) //nolint:gosec // test file path
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.HasPrefix(string(data), "name,url\n") {
			t.Errorf("unexpected content %q", data)
		}
	})

	t.Run("returns ExportError for unknown formats", func(t *testing.T) {
		t.Parallel()

		_, err := Save(t.TempDir(), Format("html"), createTestResultSet())
		var exportErr *ExportError
		if !errors.As(err, &exportErr) {
			t.Fatalf("expected ExportError, got %v", err)
		}
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected wrapped ErrUnknownFormat, got %v", err)
		}
	})

	t.Run("returns ExportError when the directory cannot be created", func(t *testing.T) {
		t.Parallel()

		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}

		_, err := Save(filepath.Join(blocker, "sub"), FormatJSON, createTestResultSet())
		var exportErr *ExportError
		if !errors.As(err, &exportErr) {
			t.Fatalf("expected ExportError, got %v", err)
		}
		if exportErr.Format != FormatJSON {
			t.Errorf("expected format json, got %q", exportErr.Format)
		}
	})
}
