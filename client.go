package galangal

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThK-Systems/galangal/internal/adapters/realclock"
	"github.com/ThK-Systems/galangal/internal/adapters/realfs"
	"github.com/ThK-Systems/galangal/internal/adapters/realrand"
	"github.com/ThK-Systems/galangal/internal/adapters/realsshdialer"
	"github.com/ThK-Systems/galangal/internal/ports"
)

// Client is an SFTP client with session management, transactional transfers
// and overwrite-conflict resolution. It owns at most one live connection,
// created lazily on first use and replaced transparently when the connection
// goes stale.
//
// A Client is safe for concurrent use. Session state transitions are
// serialized; transfers from multiple goroutines share the one session.
type Client struct {
	mu  sync.Mutex
	cfg Config

	log    *slog.Logger
	clock  ports.Clock
	dialer ports.TransportDialer
	fs     ports.FileSystem
	rand   ports.Random

	transport ports.Transport
	remote    ports.RemoteFS

	// kaLastSent is the time of the last successful keep-alive probe. The
	// zero value forces the next probe regardless of the interval.
	kaLastSent time.Time
	kaStop     chan struct{}
}

// NewClient creates a client from the given configuration. No connection is
// made; the session is established on first use.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, &ConfigError{Msg: "host is required"}
	}
	if cfg.User == "" {
		return nil, &ConfigError{Msg: "user is required"}
	}
	cfg = cfg.withDefaults()

	c := &Client{
		cfg:    cfg,
		log:    cfg.Logger,
		clock:  cfg.Clock,
		dialer: cfg.Dialer,
		fs:     cfg.FS,
		rand:   cfg.Rand,
	}
	if c.clock == nil {
		c.clock = realclock.New()
	}
	if c.dialer == nil {
		c.dialer = realsshdialer.New()
	}
	if c.fs == nil {
		c.fs = realfs.New()
	}
	if c.rand == nil {
		c.rand = realrand.New()
	}

	c.log.Info("created sftp client", slog.String("addr", c.addr()))
	return c, nil
}

// addr names the target as user@host:port for log and error messages.
func (c *Client) addr() string {
	return fmt.Sprintf("%s@%s:%d", c.cfg.User, c.cfg.Host, c.cfg.Port)
}

// settings is a point-in-time snapshot of the behavioral transfer settings.
// Operations read through a snapshot so a concurrent setter never races a
// transfer in flight.
type settings struct {
	strict         bool
	overwrite      OverwriteMode
	transactional  bool
	autoCreateDirs bool
}

func (c *Client) settings() settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return settings{
		strict:         c.cfg.StrictMode,
		overwrite:      c.cfg.Overwrite,
		transactional:  c.cfg.Transactional,
		autoCreateDirs: c.cfg.AutoCreateDirs,
	}
}

// requireDisconnected rejects mutation of connection-affecting settings while
// a session is active. Callers must hold c.mu.
func (c *Client) requireDisconnected(setting string) error {
	if c.transport != nil {
		return &StateError{Msg: fmt.Sprintf("cannot change %s while a session is active", setting)}
	}
	return nil
}

// SetTimeout changes the connect timeout. Negative values restore the
// default. Fails with a StateError while a session is active.
func (c *Client) SetTimeout(d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireDisconnected("timeout"); err != nil {
		return err
	}
	if d < 0 {
		d = DefaultTimeout
	}
	c.cfg.Timeout = d
	return nil
}

// SetStrictMode toggles mandatory existence preconditions.
func (c *Client) SetStrictMode(strict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.StrictMode = strict
}

// SetOverwrite changes the destination conflict policy.
func (c *Client) SetOverwrite(mode OverwriteMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Overwrite = mode
}

// SetTransactional toggles temp-name-then-rename transfer semantics.
func (c *Client) SetTransactional(transactional bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Transactional = transactional
}

// SetAutoCreateDirs toggles automatic creation of missing destination
// folders.
func (c *Client) SetAutoCreateDirs(create bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.AutoCreateDirs = create
}

// SetKeepAlive enables or disables the background keep-alive probe. A
// non-positive interval restores the default. Fails with a StateError while a
// session is active.
func (c *Client) SetKeepAlive(enabled bool, interval time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireDisconnected("keep-alive"); err != nil {
		return err
	}
	c.cfg.KeepAlive = enabled
	if interval <= 0 {
		interval = DefaultKeepAliveInterval
	}
	c.cfg.KeepAliveInterval = interval
	c.kaLastSent = time.Time{}
	return nil
}

// SetDisableHostKeyCheck disables host identity verification. Fails with a
// StateError while a session is active.
func (c *Client) SetDisableHostKeyCheck(disable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireDisconnected("host key checking"); err != nil {
		return err
	}
	c.cfg.DisableHostKeyCheck = disable
	return nil
}

// SetHostKey sets a base64-encoded host key to trust and enables explicit-key
// verification. Fails with a StateError while a session is active.
func (c *Client) SetHostKey(hostKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireDisconnected("host key"); err != nil {
		return err
	}
	c.cfg.HostKey = hostKey
	c.cfg.DisableHostKeyCheck = false
	return nil
}

// SetKnownHostsFile points verification at an OpenSSH known_hosts file and
// enables host key checking. Fails with a StateError while a session is
// active.
func (c *Client) SetKnownHostsFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireDisconnected("known_hosts file"); err != nil {
		return err
	}
	c.cfg.KnownHostsFile = path
	c.cfg.DisableHostKeyCheck = false
	return nil
}

// Close disconnects the client. It implements io.Closer and never returns an
// error; disconnecting is best-effort.
func (c *Client) Close() error {
	c.Disconnect()
	return nil
}
