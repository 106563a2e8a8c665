// Package database stores the history of username searches in SQLite.
//
// Every run is saved as one row holding the full result set as JSON, plus
// one row per found account so past sightings can be queried without
// decoding every run. The driver is modernc.org/sqlite, so the database is
// a single CGO-free file under the XDG data directory.
package database
