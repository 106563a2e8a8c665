package config

import "time"

// File represents the structure of the .blackbird configuration file.
// Zero values leave the corresponding setting untouched.
type File struct {
	// ListURL overrides the remote site list source.
	ListURL string `yaml:"list_url,omitempty"`

	// ListFile overrides the local site list cache path.
	ListFile string `yaml:"list_file,omitempty"`

	// LogFile overrides the log file path.
	LogFile string `yaml:"log_file,omitempty"`

	// Proxy is only applied when UseProxy is true.
	Proxy    string `yaml:"proxy,omitempty"`
	UseProxy bool   `yaml:"use_proxy,omitempty"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`

	// Concurrency bounds the probes in flight.
	Concurrency int `yaml:"concurrency,omitempty"`

	// UserConcurrency is the number of usernames searched at the same time.
	UserConcurrency int `yaml:"user_concurrency,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// OutputDir overrides where export files are written.
	OutputDir string `yaml:"output_dir,omitempty"`

	// MaxBodySize overrides the body size limit in bytes.
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`

	// History enables or disables the history database.
	History *bool `yaml:"history,omitempty"`
}

// Apply copies the settings present in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.ListURL != "" {
		cfg.ListURL = f.ListURL
	}
	if f.ListFile != "" {
		cfg.ListFile = f.ListFile
	}
	if f.LogFile != "" {
		cfg.LogFile = f.LogFile
	}
	if f.UseProxy && f.Proxy != "" {
		cfg.Proxy = f.Proxy
	}
	if f.Timeout > 0 {
		cfg.Timeout = time.Duration(f.Timeout) * time.Second
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.UserConcurrency > 0 {
		cfg.UserConcurrency = f.UserConcurrency
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}
	if f.MaxBodySize > 0 {
		cfg.MaxBodySize = f.MaxBodySize
	}
	if f.History != nil {
		cfg.SaveToDB = *f.History
	}
}
