// Package search runs one probe per site for a username and collects the
// classified outcomes into a model.ResultSet.
//
// All probes of a run share one HTTP client and run concurrently through an
// errgroup, optionally bounded. A failing or panicking probe only turns its
// own site into an ERROR outcome; it never cancels the other probes.
package search
