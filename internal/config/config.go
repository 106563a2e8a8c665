package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "blackbird"

	// DefaultListURL is the upstream WhatsMyName site list.
	DefaultListURL = "https://raw.githubusercontent.com/WebBreacher/WhatsMyName/main/wmn-data.json"

	// DefaultListFileName is the file name of the cached site list.
	DefaultListFileName = "wmn-data.json"

	// DefaultLogFileName is the file name of the run log.
	DefaultLogFileName = "blackbird.log"

	// DefaultTimeout applies to each probe and to the list download.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency of 0 probes every site at once.
	DefaultConcurrency = 0

	// DefaultUserConcurrency searches one username at a time.
	DefaultUserConcurrency = 1

	// DefaultUserAgent is sent with every probe. Several sites answer
	// differently to non-browser agents, so a browser string is used.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0"

	// DefaultMaxBodySize limits the response body read per probe.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultOutputDir is where export files are written.
	DefaultOutputDir = "."

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds all configuration options for a blackbird run.
// It is populated from defaults, the .blackbird file and CLI flags, in
// that order, and passed to every component at construction.
type Config struct {
	// Usernames are the account names to look for. Each gets its own run.
	Usernames []string

	// ListURL is the remote site list source.
	ListURL string

	// ListFile is the local cache of the site list.
	ListFile string

	// LogFile receives every log record at debug level.
	// Empty disables the log file.
	LogFile string

	// Proxy routes probes through an HTTP, HTTPS or SOCKS5 proxy.
	Proxy string

	// UseTor starts an embedded Tor daemon and routes probes through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Concurrency bounds the number of probes in flight. 0 means unbounded.
	Concurrency int

	// UserConcurrency is the number of usernames searched at the same time.
	UserConcurrency int

	// MaxBodySize is the maximum response body size in bytes to read.
	// 0 uses DefaultMaxBodySize.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with every probe.
	UserAgent string

	// Verbose prints NOT_FOUND and ERROR outcomes and debug logs.
	Verbose bool

	// NoColor disables colored console output.
	NoColor bool

	// SkipUpdate skips the site list freshness check.
	SkipUpdate bool

	// CSV, PDF, JSON, Markdown and XLSX select the export formats.
	CSV      bool
	PDF      bool
	JSON     bool
	Markdown bool
	XLSX     bool

	// OutputDir is where export files are written.
	OutputDir string

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB stores every run in the history database.
	SaveToDB bool

	// ConfigFilePath is an explicit .blackbird file path.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ListURL:           DefaultListURL,
		ListFile:          filepath.Join(XDGCacheDir(), DefaultListFileName),
		LogFile:           filepath.Join(XDGStateDir(), DefaultLogFileName),
		TorStartupTimeout: DefaultTorStartupTimeout,
		Timeout:           DefaultTimeout,
		Concurrency:       DefaultConcurrency,
		UserConcurrency:   DefaultUserConcurrency,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		OutputDir:         DefaultOutputDir,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for blackbird.
// On Linux: ~/.local/share/blackbird
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for blackbird.
// On Linux: ~/.config/blackbird
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for blackbird.
// On Linux: ~/.cache/blackbird
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// XDGStateDir returns the XDG state directory for blackbird.
// On Linux: ~/.local/state/blackbird
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// HasExports reports whether at least one export format is selected.
func (c *Config) HasExports() bool {
	return c.CSV || c.PDF || c.JSON || c.Markdown || c.XLSX
}

// Validate checks if the configuration is valid for a search run.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Usernames) == 0 {
		return ErrNoUsername
	}
	for _, u := range c.Usernames {
		if strings.TrimSpace(u) == "" {
			return ErrNoUsername
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}

	if c.UserConcurrency < 1 {
		return ErrInvalidUserConcurrency
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.ListFile == "" {
		return ErrNoListFile
	}

	if c.Proxy != "" && c.UseTor {
		return ErrConflictingProxy
	}

	if c.Proxy != "" && !IsSupportedProxy(c.Proxy) {
		return ErrInvalidProxy
	}

	return nil
}

// IsSupportedProxy reports whether raw is a proxy URL with a supported
// scheme and a host.
func IsSupportedProxy(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
		return true
	default:
		return false
	}
}
