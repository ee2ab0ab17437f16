package galangal

import (
	"log/slog"
	"time"

	"github.com/ThK-Systems/galangal/internal/ports"
)

// OverwriteMode controls what happens when a transfer's destination name
// already exists.
type OverwriteMode int

const (
	// OverwriteNever rejects the transfer with an AlreadyExistsError.
	OverwriteNever OverwriteMode = iota

	// OverwriteAlways overwrites the existing file without warning.
	OverwriteAlways

	// OverwriteSuffixBeforeExt inserts a counting suffix before the
	// extension: myfile.txt, myfile.1.txt, myfile.2.txt, ...
	OverwriteSuffixBeforeExt

	// OverwriteSuffixAfterExt appends a counting suffix after the extension:
	// myfile.txt, myfile.txt.1, myfile.txt.2, ...
	OverwriteSuffixAfterExt
)

// String returns a human-readable policy name.
func (m OverwriteMode) String() string {
	switch m {
	case OverwriteNever:
		return "never"
	case OverwriteAlways:
		return "always"
	case OverwriteSuffixBeforeExt:
		return "suffix-before-ext"
	case OverwriteSuffixAfterExt:
		return "suffix-after-ext"
	default:
		return "unknown"
	}
}

const (
	// DefaultPort is the standard SFTP port.
	DefaultPort = 22

	// DefaultTimeout is the default connect timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultKeepAliveInterval is the default delay between keep-alive probes.
	DefaultKeepAliveInterval = 5 * time.Second
)

// Config holds the connection and transfer settings of a Client.
// Start from DefaultConfig and override what you need; fields left at their
// zero value where a non-zero default exists (Port, Timeout,
// KeepAliveInterval) are filled in by NewClient.
type Config struct {
	// Host is the target server hostname or IP address.
	Host string

	// Port is the SSH port (default 22).
	Port int

	// User is the login name.
	User string

	// Password enables password authentication. Ignored when a readable
	// PrivateKeyPath is configured.
	Password string

	// PrivateKeyPath is the path to a private key file. A readable key file
	// takes precedence over Password.
	PrivateKeyPath string

	// PrivateKeyPassphrase decrypts an encrypted private key. May be empty.
	PrivateKeyPassphrase string

	// Timeout is the connect timeout (default 30s). Negative values fall
	// back to the default.
	Timeout time.Duration

	// StrictMode makes existence preconditions mandatory: expected local or
	// remote files and folders must exist or the operation fails with a
	// NotFoundError. Disabling it lets wildcard operations proceed
	// optimistically.
	StrictMode bool

	// Overwrite is the conflict policy for transfer destinations.
	Overwrite OverwriteMode

	// Transactional transfers write to a temporary co-located name and
	// rename into place, so a destination name never appears partially
	// written. The commit uses a plain SFTP rename, which on many servers
	// (OpenSSH included) refuses to replace an existing file; combined with
	// OverwriteAlways the commit can therefore fail if the destination still
	// exists on such a server.
	Transactional bool

	// AutoCreateDirs creates missing destination folders on upload,
	// download, rename and move.
	AutoCreateDirs bool

	// KeepAlive enables a background goroutine that periodically pings the
	// server to keep the session alive and detect drops early.
	KeepAlive bool

	// KeepAliveInterval is the delay between keep-alive probes (default 5s).
	KeepAliveInterval time.Duration

	// DisableHostKeyCheck skips host identity verification entirely.
	// Insecure; logged as a warning on connect.
	DisableHostKeyCheck bool

	// HostKey is a base64-encoded public host key to trust for this host.
	// Setting it enables explicit-key verification.
	HostKey string

	// KnownHostsFile points host identity verification at an OpenSSH
	// known_hosts file. Must be readable at connect time.
	KnownHostsFile string

	// Logger receives structured log events (connect attempts, reconnects,
	// keep-alive failures, conflict resolution outcomes). Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Clock, Dialer, FS and Rand inject the external capabilities the client
	// consumes. They default to the production adapters and exist for
	// testing.
	Clock  ports.Clock
	Dialer ports.TransportDialer
	FS     ports.FileSystem
	Rand   ports.Random
}

// DefaultConfig returns the default client settings: strict mode on,
// overwriting disabled, transactional transfers on, keep-alive off.
func DefaultConfig() Config {
	return Config{
		Port:              DefaultPort,
		Timeout:           DefaultTimeout,
		StrictMode:        true,
		Overwrite:         OverwriteNever,
		Transactional:     true,
		KeepAliveInterval: DefaultKeepAliveInterval,
	}
}

// withDefaults fills zero-valued fields that have non-zero defaults.
func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.KeepAliveInterval <= 0 {
		c.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
