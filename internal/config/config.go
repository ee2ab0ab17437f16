// Package config handles configuration parsing for the galangal CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ThK-Systems/galangal"
	"github.com/ThK-Systems/galangal/internal/security"
)

// DefaultConfigPath returns the default config file path:
// $XDG_CONFIG_HOME/galangal/config.yaml or ~/.config/galangal/config.yaml
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "galangal", "config.yaml")
}

// Config represents the top-level configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Transfer TransferConfig `yaml:"transfer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines the SFTP server connection.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	User              string        `yaml:"user"`
	Timeout           time.Duration `yaml:"timeout"`
	KeepAlive         bool          `yaml:"keep_alive"`
	KeepAliveInterval time.Duration `yaml:"keep_alive_interval"`
	Auth              AuthConfig    `yaml:"auth"`
	HostKey           HostKeyConfig `yaml:"host_key"`
}

// AuthConfig defines authentication settings. Secrets are never stored in
// the file itself; they are resolved from environment variables or the OS
// keyring.
type AuthConfig struct {
	KeyPath       string `yaml:"key_path"`       // path to private key file
	PassphraseEnv string `yaml:"passphrase_env"` // env var containing key passphrase
	PasswordEnv   string `yaml:"password_env"`   // env var containing password
	UseKeyring    bool   `yaml:"use_keyring"`    // resolve secrets from the OS keyring
}

// HostKeyConfig defines host identity verification settings.
type HostKeyConfig struct {
	DisableCheck bool   `yaml:"disable_check"` // skip verification (insecure)
	Key          string `yaml:"key"`           // base64-encoded host key to trust
	KnownHosts   string `yaml:"known_hosts"`   // path to a known_hosts file
}

// TransferConfig defines transfer behavior.
type TransferConfig struct {
	StrictMode     *bool  `yaml:"strict_mode"`      // default true
	Overwrite      string `yaml:"overwrite"`        // never|always|suffix-before-ext|suffix-after-ext
	Transactional  *bool  `yaml:"transactional"`    // default true
	AutoCreateDirs bool   `yaml:"auto_create_dirs"` // default false
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // "debug", "info", "warn", "error"
	Sanitize bool   `yaml:"sanitize"` // redact sensitive data from logs
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    22,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Sanitize: true,
		},
	}
}

// Load loads configuration from a YAML file. An empty path loads the default
// location; a missing default file yields the default configuration.
func Load(path string) (*Config, error) {
	usingDefault := path == ""
	if usingDefault {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if usingDefault && os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.User == "" {
		return fmt.Errorf("server.user is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Transfer.Overwrite {
	case "", "never", "always", "suffix-before-ext", "suffix-after-ext":
	default:
		return fmt.Errorf("transfer.overwrite %q is not a known policy", c.Transfer.Overwrite)
	}
	return nil
}

// overwriteMode maps the YAML policy name to the client enum.
func overwriteMode(name string) galangal.OverwriteMode {
	switch name {
	case "always":
		return galangal.OverwriteAlways
	case "suffix-before-ext":
		return galangal.OverwriteSuffixBeforeExt
	case "suffix-after-ext":
		return galangal.OverwriteSuffixAfterExt
	default:
		return galangal.OverwriteNever
	}
}

// ClientConfig resolves the file configuration into a client Config,
// including credential lookup from the environment and, if enabled, the OS
// keyring.
func (c *Config) ClientConfig() (galangal.Config, error) {
	cfg := galangal.DefaultConfig()
	cfg.Host = c.Server.Host
	cfg.Port = c.Server.Port
	cfg.User = c.Server.User
	cfg.Timeout = c.Server.Timeout
	cfg.KeepAlive = c.Server.KeepAlive
	cfg.KeepAliveInterval = c.Server.KeepAliveInterval
	cfg.PrivateKeyPath = c.Server.Auth.KeyPath
	cfg.DisableHostKeyCheck = c.Server.HostKey.DisableCheck
	cfg.HostKey = c.Server.HostKey.Key
	cfg.KnownHostsFile = c.Server.HostKey.KnownHosts
	cfg.Overwrite = overwriteMode(c.Transfer.Overwrite)
	cfg.AutoCreateDirs = c.Transfer.AutoCreateDirs
	if c.Transfer.StrictMode != nil {
		cfg.StrictMode = *c.Transfer.StrictMode
	}
	if c.Transfer.Transactional != nil {
		cfg.Transactional = *c.Transfer.Transactional
	}

	if c.Server.Auth.PassphraseEnv != "" {
		cfg.PrivateKeyPassphrase = os.Getenv(c.Server.Auth.PassphraseEnv)
	}
	if c.Server.Auth.PasswordEnv != "" {
		cfg.Password = os.Getenv(c.Server.Auth.PasswordEnv)
	}

	if c.Server.Auth.UseKeyring {
		ks := security.NewKeyringStore()
		if cfg.Password == "" && cfg.PrivateKeyPath == "" {
			password, err := ks.GetPassword(cfg.User, cfg.Host)
			if err != nil {
				return galangal.Config{}, fmt.Errorf("resolve password from keyring: %w", err)
			}
			cfg.Password = password
		}
		if cfg.PrivateKeyPath != "" && cfg.PrivateKeyPassphrase == "" {
			// A missing passphrase entry is fine: the key may be unencrypted.
			if passphrase, err := ks.GetPassphrase(cfg.PrivateKeyPath); err == nil {
				cfg.PrivateKeyPassphrase = passphrase
			}
		}
	}

	return cfg, nil
}
