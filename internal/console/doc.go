// Package console prints the user-facing progress of a run: the banner,
// one line per found account as results arrive, the completion summary and
// notices about the site list and exported files.
//
// Colors come from fatih/color and are switched per Printer, so a Printer
// writing to a buffer or a pipe stays plain while another writes colored
// output to a terminal.
package console
