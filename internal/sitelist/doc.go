// Package sitelist loads, stores and refreshes the WhatsMyName site list.
//
// The list lives in a local cache file. Before a run, RefreshIfStale
// compares the SHA3-256 hash of the canonical local document with the hash
// of the remote document and replaces the cache only when they differ.
// Documents are always written in canonical form (sorted keys, 4-space
// indent, no ASCII escaping) through a temp file and a rename, so a reader
// never sees a partially written list.
package sitelist
