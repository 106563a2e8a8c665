// Package config provides the configuration for blackbird.
// It defines defaults, validation, XDG directory helpers and the optional
// .blackbird YAML file that replaces command line flags for settings that
// rarely change (site list location, proxy, timeouts).
package config
