package wapploxx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pkt.systems/wapploxx/internal/ipblock"
)

const (
	// DefaultTimeout bounds each HTTP request against the controller.
	DefaultTimeout = 5 * time.Second
	// DefaultConfigFileName is the config file searched for when --config is omitted.
	DefaultConfigFileName = "config.yaml"
	// DefaultIPBlockFileName is the login-lockout record inside the config dir.
	DefaultIPBlockFileName = ipblock.DefaultFileName
)

// Config describes a controller connection as assembled from flags,
// environment, and the optional config file.
type Config struct {
	// Server is the controller base URL, e.g. https://192.168.1.50.
	Server string `mapstructure:"server"`
	// Username is the controller account name.
	Username string `mapstructure:"username"`
	// Password is the controller account password.
	Password string `mapstructure:"password"`
	// InsecureTLS disables certificate verification. Controllers ship with
	// self-signed certificates, so this is commonly needed.
	InsecureTLS bool `mapstructure:"insecure_tls"`
	// Timeout bounds each HTTP request. Zero uses DefaultTimeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// PersistIPBlock controls whether LOGIN_IP_BLOCKED lockouts are written
	// to disk. Defaults to true.
	PersistIPBlock bool `mapstructure:"persist_ip_block"`
	// IPBlockPath overrides where the lockout record lives. Empty resolves
	// to DefaultIPBlockFileName under the config dir.
	IPBlockPath string `mapstructure:"ip_block_path"`
}

// Normalize fills defaults and validates required fields.
func (c *Config) Normalize() error {
	c.Server = strings.TrimSpace(c.Server)
	if c.Server == "" {
		return fmt.Errorf("wapploxx: controller server URL required")
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("wapploxx: username and password required")
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(c.IPBlockPath) == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return fmt.Errorf("wapploxx: resolve config dir: %w", err)
		}
		c.IPBlockPath = filepath.Join(dir, DefaultIPBlockFileName)
	}
	return nil
}

// DefaultConfigDir returns the directory holding the CLI config file and the
// persisted lockout record. WAPPLOXX_CONFIG_DIR overrides the default
// $HOME/.wapploxx.
func DefaultConfigDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv("WAPPLOXX_CONFIG_DIR")); override != "" {
		if filepath.IsAbs(override) {
			return override, nil
		}
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", err
		}
		return abs, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".wapploxx"), nil
}

// EnsureConfigDir creates the config dir when missing and returns its path.
func EnsureConfigDir() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
