// Package fakesshdialer provides an in-memory TransportDialer and remote
// file tree for testing session and transfer behavior without a server.
package fakesshdialer

import (
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/ThK-Systems/galangal/internal/ports"
)

// Dialer is a fake TransportDialer. Every successful dial yields a new
// Transport backed by the same Server.
type Dialer struct {
	mu         sync.Mutex
	server     *Server
	dialErr    error
	sftpErr    error
	dials      int
	transports []*Transport
	lastAddr   string
	lastConfig *ssh.ClientConfig
}

// New creates a dialer serving the given remote tree.
func New(server *Server) *Dialer {
	return &Dialer{server: server}
}

// Dial records the attempt and returns a fresh transport, or the injected
// dial error.
func (d *Dialer) Dial(network, addr string, config *ssh.ClientConfig) (ports.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	d.lastAddr = addr
	d.lastConfig = config
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	t := &Transport{server: d.server, sftpErr: d.sftpErr}
	d.transports = append(d.transports, t)
	return t, nil
}

// FailDials makes every subsequent dial return err. Pass nil to restore
// normal behavior.
func (d *Dialer) FailDials(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialErr = err
}

// FailOpenSFTP makes the SFTP channel open of subsequently dialed transports
// return err.
func (d *Dialer) FailOpenSFTP(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sftpErr = err
}

// DialCount returns the number of dial attempts.
func (d *Dialer) DialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// LastAddr returns the most recently dialed address.
func (d *Dialer) LastAddr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastAddr
}

// LastConfig returns the client config of the most recent dial.
func (d *Dialer) LastConfig() *ssh.ClientConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastConfig
}

// LastTransport returns the most recently dialed transport, or nil.
func (d *Dialer) LastTransport() *Transport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.transports) == 0 {
		return nil
	}
	return d.transports[len(d.transports)-1]
}

// Transport is one fake SSH connection.
type Transport struct {
	mu           sync.Mutex
	server       *Server
	sftpErr      error
	keepAliveErr error
	keepAlives   int
	closed       bool
}

// OpenSFTP opens a channel onto the shared remote tree.
func (t *Transport) OpenSFTP() (ports.RemoteFS, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sftpErr != nil {
		return nil, t.sftpErr
	}
	return &conn{server: t.server}, nil
}

// SendKeepAlive counts the probe and returns the injected error, if any. A
// closed transport always fails.
func (t *Transport) SendKeepAlive() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.keepAlives++
	if t.closed {
		return errTransportClosed
	}
	return t.keepAliveErr
}

// FailKeepAlives makes every subsequent probe on this transport return err.
func (t *Transport) FailKeepAlives(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keepAliveErr = err
}

// KeepAliveCount returns the number of probes sent on this transport.
func (t *Transport) KeepAliveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keepAlives
}

// Close marks the transport closed.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Closed reports whether Close was called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

type transportError string

func (e transportError) Error() string { return string(e) }

const errTransportClosed = transportError("transport is closed")

// Ensure the fakes implement their ports.
var (
	_ ports.TransportDialer = (*Dialer)(nil)
	_ ports.Transport       = (*Transport)(nil)
	_ ports.RemoteFS        = (*conn)(nil)
)
