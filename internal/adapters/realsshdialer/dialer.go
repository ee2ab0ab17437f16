// Package realsshdialer provides the production implementation of the
// Transport port on top of golang.org/x/crypto/ssh and github.com/pkg/sftp.
package realsshdialer

import (
	"io"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/ThK-Systems/galangal/internal/ports"
)

// keepAliveRequest is the request name OpenSSH servers answer for liveness
// probes.
const keepAliveRequest = "keepalive@openssh.com"

// Dialer implements ports.TransportDialer using the real ssh.Dial function.
type Dialer struct{}

// New creates a new Dialer.
func New() *Dialer {
	return &Dialer{}
}

// Dial establishes an SSH connection to the given address.
func (d *Dialer) Dial(network, addr string, config *ssh.ClientConfig) (ports.Transport, error) {
	conn, err := ssh.Dial(network, addr, config)
	if err != nil {
		return nil, err
	}
	return &transport{conn: conn}, nil
}

// transport wraps an established *ssh.Client.
type transport struct {
	conn *ssh.Client
}

// OpenSFTP opens an SFTP channel on the connection.
func (t *transport) OpenSFTP() (ports.RemoteFS, error) {
	client, err := sftp.NewClient(t.conn)
	if err != nil {
		return nil, err
	}
	return &remoteFS{client: client}, nil
}

// SendKeepAlive sends a keep-alive request on the connection. The reply is
// irrelevant; only the transport error matters.
func (t *transport) SendKeepAlive() error {
	_, _, err := t.conn.SendRequest(keepAliveRequest, true, nil)
	return err
}

// Close tears down the SSH connection.
func (t *transport) Close() error {
	return t.conn.Close()
}

// remoteFS adapts *sftp.Client to the RemoteFS port.
type remoteFS struct {
	client *sftp.Client
}

func (r *remoteFS) Stat(path string) (os.FileInfo, error)      { return r.client.Stat(path) }
func (r *remoteFS) ReadDir(path string) ([]os.FileInfo, error) { return r.client.ReadDir(path) }
func (r *remoteFS) Mkdir(path string) error                    { return r.client.Mkdir(path) }
func (r *remoteFS) Remove(path string) error                   { return r.client.Remove(path) }
func (r *remoteFS) RemoveDirectory(path string) error          { return r.client.RemoveDirectory(path) }
func (r *remoteFS) Rename(oldPath, newPath string) error       { return r.client.Rename(oldPath, newPath) }
func (r *remoteFS) Open(path string) (io.ReadCloser, error)    { return r.client.Open(path) }
func (r *remoteFS) Create(path string) (io.WriteCloser, error) { return r.client.Create(path) }
func (r *remoteFS) Close() error                               { return r.client.Close() }

var (
	_ ports.TransportDialer = (*Dialer)(nil)
	_ ports.Transport       = (*transport)(nil)
	_ ports.RemoteFS        = (*remoteFS)(nil)
)
