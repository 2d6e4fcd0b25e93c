// Package config holds the plugin's configuration: logging, which file
// reader backs descriptor fetches, and the optional HTTP adapter.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Reader kinds.
const (
	ReaderHTTP = "http"
	ReaderFS   = "fs"
)

// DefaultRawBaseURL is the raw-content host used by the HTTP reader.
const DefaultRawBaseURL = "https://raw.githubusercontent.com"

// Config is the top-level configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Reader ReaderConfig `yaml:"reader"`
	Server ServerConfig `yaml:"server"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ServerConfig holds configuration for the HTTP adapter.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address (default ":8080")
}

// ReaderConfig selects and configures the FileReader implementation.
type ReaderConfig struct {
	// Kind is "http" or "fs".
	Kind string `yaml:"kind"`

	// Root is the directory served by the fs reader.
	Root string `yaml:"root"`

	HTTP HTTPReaderConfig `yaml:"http"`
}

// HTTPReaderConfig contains settings for the raw-content HTTP reader.
type HTTPReaderConfig struct {
	// BaseURL is the raw-content host (default raw.githubusercontent.com).
	BaseURL string `yaml:"base_url"`

	// Repository is "owner/name" or a full URL to the repository root.
	Repository string `yaml:"repository"`

	// Ref is the branch, tag or commit (default "main").
	Ref string `yaml:"ref"`

	// Timeout is the HTTP request timeout (default: 30 seconds).
	Timeout time.Duration `yaml:"timeout"`

	// Credentials maps hostnames to authentication credentials.
	// Supports wildcard patterns like "*.example.com".
	Credentials map[string]CredentialSet `yaml:"credentials"`

	// CredentialsFile is a JSON file merged into Credentials on load.
	CredentialsFile string `yaml:"credentials_file"`

	// DefaultHeaders are headers added to all HTTP requests.
	DefaultHeaders map[string]string `yaml:"headers"`

	TLS TLSConfig `yaml:"tls"`
}

// CredentialSet holds authentication credentials for a host.
type CredentialSet struct {
	// Type specifies the authentication type: "bearer", "basic", or "header".
	Type string `json:"type" yaml:"type"`

	Token       string `json:"token,omitempty" yaml:"token,omitempty"`
	Username    string `json:"username,omitempty" yaml:"username,omitempty"`
	Password    string `json:"password,omitempty" yaml:"password,omitempty"`
	HeaderName  string `json:"header_name,omitempty" yaml:"header_name,omitempty"`
	HeaderValue string `json:"header_value,omitempty" yaml:"header_value,omitempty"`
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Reader: ReaderConfig{
			Kind: ReaderFS,
			Root: ".",
			HTTP: HTTPReaderConfig{
				BaseURL: DefaultRawBaseURL,
				Ref:     "main",
				Timeout: 30 * time.Second,
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if f := cfg.Reader.HTTP.CredentialsFile; f != "" {
		creds, err := LoadCredentialsFile(f)
		if err != nil {
			return cfg, err
		}
		if cfg.Reader.HTTP.Credentials == nil {
			cfg.Reader.HTTP.Credentials = make(map[string]CredentialSet, len(creds))
		}
		for host, c := range creds {
			cfg.Reader.HTTP.Credentials[host] = c
		}
	}

	return cfg, nil
}

// Validate reports configuration that cannot produce a working reader.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Reader.Kind) {
	case ReaderFS:
		if c.Reader.Root == "" {
			errs = append(errs, errors.New("reader.root is required for the fs reader"))
		}
	case ReaderHTTP:
		if c.Reader.HTTP.Repository == "" {
			errs = append(errs, errors.New("reader.http.repository is required for the http reader"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown reader kind %q (want http or fs)", c.Reader.Kind))
	}
	if c.Reader.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("reader.http.timeout must not be negative"))
	}
	return errors.Join(errs...)
}
