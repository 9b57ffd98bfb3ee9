package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/benaskins/latch/internal/credential"
)

// DefaultService is used when neither the config nor the command line names one.
const DefaultService = "latch"

// Config holds persistent CLI configuration loaded from ~/.latch/config.yaml.
type Config struct {
	// Domain is the keychain domain used on macOS when --domain is not given.
	Domain credential.MacKeychainDomain `yaml:"domain"`
	// Service is the service name used when --service is not given.
	Service string `yaml:"service"`
	// AuditLog is the audit log path. Empty means ~/.latch/audit.log.
	AuditLog string `yaml:"audit_log"`
	// Audit turns the audit log on or off. A missing key means on.
	Audit *bool `yaml:"audit"`
}

// Home returns the latch home directory (~/.latch).
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".latch")
}

// DefaultPath returns the default config file path: ~/.latch/config.yaml.
func DefaultPath() string {
	dir := Home()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{Domain: credential.DomainUser, Service: DefaultService}
}

// Load reads a YAML config file from path. If the file does not exist,
// it returns the default Config and no error. An empty or all-comment file
// also returns the default Config with no error. Keys present in the file
// override the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Service == "" {
		cfg.Service = DefaultService
	}
	return cfg, nil
}

// AuditEnabled reports whether credential operations should be audited.
func (c *Config) AuditEnabled() bool {
	return c.Audit == nil || *c.Audit
}

// AuditPath returns the audit log location, falling back to ~/.latch/audit.log.
func (c *Config) AuditPath() string {
	if c.AuditLog != "" {
		return c.AuditLog
	}
	dir := Home()
	if dir == "" {
		return "audit.log"
	}
	return filepath.Join(dir, "audit.log")
}
