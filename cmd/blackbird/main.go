// Package main provides the entry point for the blackbird CLI.
//
// Blackbird searches for accounts by username across the sites of the
// WhatsMyName list.
//
// Usage:
//
//	blackbird -u <username> [--csv] [--pdf]
//	blackbird history <username>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
