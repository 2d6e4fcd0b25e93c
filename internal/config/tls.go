package config

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
)

// TLSConfig contains TLS settings for HTTPS descriptor fetches.
type TLSConfig struct {
	// CACertPath is the path to a PEM-encoded CA certificate file.
	// When set, this CA is added to the trust pool for all HTTPS connections.
	CACertPath string `yaml:"ca_cert"`

	// InsecureSkipVerify disables certificate verification.
	// WARNING: Only use for testing. Never enable in production.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// BuildTLSConfig creates a *tls.Config from TLSConfig settings.
// Returns nil if no custom TLS configuration is needed.
func (c TLSConfig) BuildTLSConfig() (*tls.Config, error) {
	if c.InsecureSkipVerify {
		return &tls.Config{InsecureSkipVerify: true}, nil
	}

	if c.CACertPath == "" {
		return nil, nil // Use system CA pool
	}

	caCert, err := os.ReadFile(c.CACertPath)
	if err != nil {
		return nil, fmt.Errorf("read CA cert %s: %w", c.CACertPath, err)
	}

	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA cert %s", c.CACertPath)
	}

	return &tls.Config{RootCAs: certPool}, nil
}

// LoadCredentialsFile loads credentials from a JSON file.
// The file format is: {"hostname": {"type": "bearer", "token": "..."}, ...}
func LoadCredentialsFile(path string) (map[string]CredentialSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	var creds map[string]CredentialSet
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	return creds, nil
}
