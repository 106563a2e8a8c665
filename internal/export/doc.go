// Package export writes the accounts found in a run to report files.
//
// Supported formats are CSV, PDF, JSON, Markdown and XLSX. Every format
// implements Writer; Save picks the writer, names the file
// <username>_<MM_DD_YYYY>_blackbird.<ext> and places it in the output
// directory. Failures are returned as *ExportError so the caller can report
// them without aborting the run.
package export
