package galangal

import (
	"encoding/base64"
	"log/slog"
	"net"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// hostKeyCallback resolves the configured host identity mode into the
// verification callback handed to the transport layer.
//
// Modes, in order of precedence: disabled, known_hosts file, explicit key.
// With nothing configured the connection proceeds unverified, flagged with a
// warning.
func (c *Client) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.cfg.DisableHostKeyCheck {
		c.log.Warn("host key checking disabled", slog.String("addr", c.addr()))
		return ssh.InsecureIgnoreHostKey(), nil
	}

	if c.cfg.KnownHostsFile != "" {
		// knownhosts.New reads the file itself; probe readability first so a
		// bad path surfaces as a configuration problem, not a transport one.
		if _, err := c.fs.ReadFile(c.cfg.KnownHostsFile); err != nil {
			return nil, &ConfigError{Msg: "known_hosts file not readable: " + c.cfg.KnownHostsFile, Err: err}
		}
		callback, err := knownhosts.New(c.cfg.KnownHostsFile)
		if err != nil {
			return nil, &ConfigError{Msg: "parse known_hosts file: " + c.cfg.KnownHostsFile, Err: err}
		}
		c.log.Debug("using known_hosts file", slog.String("path", c.cfg.KnownHostsFile))
		return callback, nil
	}

	if c.cfg.HostKey != "" {
		blob, err := base64.StdEncoding.DecodeString(c.cfg.HostKey)
		if err != nil {
			return nil, &ConfigError{Msg: "decode host key", Err: err}
		}
		key, err := ssh.ParsePublicKey(blob)
		if err != nil {
			return nil, &ConfigError{Msg: "parse host key", Err: err}
		}
		c.log.Debug("using explicit host key", slog.String("type", key.Type()))
		return ssh.FixedHostKey(key), nil
	}

	c.log.Warn("host key checking is not disabled, but no host key or known_hosts file is configured",
		slog.String("addr", c.addr()))
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		return nil
	}, nil
}
