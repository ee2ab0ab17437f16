package ports

import (
	"io"
	"os"

	"golang.org/x/crypto/ssh"
)

// RemoteFS is the subset of SFTP channel operations the client depends on.
// The production implementation wraps github.com/pkg/sftp; tests use an
// in-memory double.
type RemoteFS interface {
	// Stat returns file info for the remote path.
	Stat(path string) (os.FileInfo, error)

	// ReadDir lists the entries of a remote directory.
	ReadDir(path string) ([]os.FileInfo, error)

	// Mkdir creates a single remote directory (the parent must exist).
	Mkdir(path string) error

	// Remove removes a remote file.
	Remove(path string) error

	// RemoveDirectory removes an empty remote directory.
	RemoveDirectory(path string) error

	// Rename renames a remote file or directory.
	Rename(oldPath, newPath string) error

	// Open opens a remote file for reading.
	Open(path string) (io.ReadCloser, error)

	// Create creates or truncates a remote file for writing.
	Create(path string) (io.WriteCloser, error)

	// Close shuts down the SFTP channel.
	Close() error
}

// Transport is one authenticated SSH connection capable of hosting an SFTP
// channel and answering keep-alive probes.
type Transport interface {
	// OpenSFTP opens an SFTP channel on the connection.
	OpenSFTP() (RemoteFS, error)

	// SendKeepAlive sends a lightweight request proving the connection is
	// alive. It fails once the connection is closed or broken.
	SendKeepAlive() error

	// Close tears down the underlying connection.
	Close() error
}

// TransportDialer abstracts SSH connection establishment for testing.
type TransportDialer interface {
	// Dial establishes an authenticated connection to the given address.
	Dial(network, addr string, config *ssh.ClientConfig) (Transport, error)
}
