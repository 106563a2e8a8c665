// Package model defines the core data structures shared by blackbird.
//
// This package contains the following main types:
//   - Site: one entry of a WhatsMyName-style site list
//   - SiteList: the ordered set of sites plus its provenance
//   - RawResponse: what a single HTTP probe observed
//   - Outcome: the classified result of probing one site
//   - ResultSet: every outcome of one run for one username
//
// The types carry no behavior beyond small helpers so that the list store,
// the prober, the searcher and the exporters can share them without import
// cycles. All of them are serializable to JSON for exports and the history
// database.
package model
