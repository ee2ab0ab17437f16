package galangal

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/ThK-Systems/galangal/internal/ports"
)

// getConnection returns the live SFTP channel, connecting lazily on first use.
// An existing session is probed with a keep-alive ping; a failed probe
// triggers a full disconnect and reconnect. The triggering operation is not
// re-issued automatically.
func (c *Client) getConnection() (ports.RemoteFS, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getConnectionLocked()
}

func (c *Client) getConnectionLocked() (ports.RemoteFS, error) {
	if c.remote == nil {
		if err := c.connectLocked(); err != nil {
			return nil, err
		}
	} else if !c.sendKeepAliveLocked(false) {
		c.log.Info("session is stale, reconnecting", slog.String("addr", c.addr()))
		if err := c.reconnectLocked(); err != nil {
			return nil, err
		}
	}
	return c.remote, nil
}

// connectLocked establishes the session and the SFTP channel. Callers must
// hold c.mu.
func (c *Client) connectLocked() error {
	c.log.Debug("connecting", slog.String("addr", c.addr()))

	auth, err := c.authMethods()
	if err != nil {
		return err
	}

	hostKeyCallback, err := c.hostKeyCallback()
	if err != nil {
		return err
	}

	sshConfig := &ssh.ClientConfig{
		User:            c.cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         c.cfg.Timeout,
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	transport, err := c.dialer.Dial("tcp", addr, sshConfig)
	if err != nil {
		return c.connectFailed(err)
	}

	remote, err := transport.OpenSFTP()
	if err != nil {
		if cerr := transport.Close(); cerr != nil {
			c.log.Warn("closing connection after failed sftp channel open", slog.String("error", cerr.Error()))
		}
		return c.connectFailed(err)
	}

	c.transport = transport
	c.remote = remote

	c.stopKeepAliveLoopLocked()
	c.sendKeepAliveLocked(true)
	c.startKeepAliveLoopLocked()

	c.log.Info("connected", slog.String("addr", c.addr()))
	return nil
}

// connectFailed wraps a transport failure into a ConnectionError and forces
// the next keep-alive probe.
func (c *Client) connectFailed(err error) error {
	c.kaLastSent = time.Time{}
	connErr := &ConnectionError{Addr: c.addr(), Err: err}
	c.log.Error("connect failed", slog.String("addr", c.addr()), slog.String("error", err.Error()))
	return connErr
}

// authMethods builds the authentication chain. Exactly one credential source
// is used: a readable private key file takes precedence over a password.
func (c *Client) authMethods() ([]ssh.AuthMethod, error) {
	if c.cfg.PrivateKeyPath != "" {
		keyData, err := c.fs.ReadFile(c.cfg.PrivateKeyPath)
		if err == nil {
			var signer ssh.Signer
			if c.cfg.PrivateKeyPassphrase != "" {
				signer, err = ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(c.cfg.PrivateKeyPassphrase))
			} else {
				signer, err = ssh.ParsePrivateKey(keyData)
			}
			if err != nil {
				return nil, &ConfigError{Msg: "parse private key " + c.cfg.PrivateKeyPath, Err: err}
			}
			c.log.Debug("using private key authentication", slog.String("key_path", c.cfg.PrivateKeyPath))
			return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
		}
		c.log.Warn("private key file not readable, falling back to password",
			slog.String("key_path", c.cfg.PrivateKeyPath), slog.String("error", err.Error()))
	}

	if c.cfg.Password != "" {
		c.log.Debug("using password authentication")
		return []ssh.AuthMethod{
			ssh.Password(c.cfg.Password),
			keyboardInteractive(c.cfg.Password),
		}, nil
	}

	return nil, &ConfigError{Msg: "no credentials given for authentication"}
}

// keyboardInteractive answers every server prompt with the password. Some
// servers offer only keyboard-interactive even for plain password logins.
func keyboardInteractive(password string) ssh.AuthMethod {
	return ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = password
		}
		return answers, nil
	})
}

// Disconnect tears down the session. It is idempotent and best-effort:
// transport errors are logged, never returned.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectLocked()
}

func (c *Client) disconnectLocked() {
	if c.transport == nil && c.remote == nil {
		return
	}
	c.log.Debug("disconnecting", slog.String("addr", c.addr()))

	c.stopKeepAliveLoopLocked()

	if c.remote != nil {
		if err := c.remote.Close(); err != nil {
			c.log.Warn("closing sftp channel", slog.String("error", err.Error()))
		}
		c.remote = nil
	}
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			c.log.Warn("closing connection", slog.String("error", err.Error()))
		}
		c.transport = nil
	}
	c.kaLastSent = time.Time{}
}

// reconnectLocked replaces the session with a fresh one. Callers must hold
// c.mu.
func (c *Client) reconnectLocked() error {
	c.disconnectLocked()
	return c.connectLocked()
}
