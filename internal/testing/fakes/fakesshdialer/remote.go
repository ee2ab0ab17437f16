package fakesshdialer

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"sort"
	"sync"
	"time"
)

// Server is an in-memory remote file tree shared by every connection a
// Dialer hands out, so state survives reconnects the way a real server's
// does.
type Server struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool

	writeErr  error
	readErr   error
	renameErr error
}

// NewServer creates an empty remote tree.
func NewServer() *Server {
	return &Server{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true, ".": true},
	}
}

// Put stores a remote file, creating parent directories.
func (s *Server) Put(p string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean(p)
	s.mkdirAllLocked(path.Dir(p))
	s.files[p] = append([]byte(nil), data...)
}

// AddDir creates a remote directory including parents.
func (s *Server) AddDir(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mkdirAllLocked(path.Clean(p))
}

func (s *Server) mkdirAllLocked(p string) {
	for p != "" && !s.dirs[p] {
		s.dirs[p] = true
		parent := path.Dir(p)
		if parent == p {
			break
		}
		p = parent
	}
}

// Exists reports whether a file or directory is present.
func (s *Server) Exists(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean(p)
	_, isFile := s.files[p]
	return isFile || s.dirs[p]
}

// Content returns a remote file's bytes, or nil when it does not exist.
func (s *Server) Content(p string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path.Clean(p)]
	if !ok {
		return nil
	}
	return append([]byte(nil), data...)
}

// FileNames returns the sorted paths of all remote files (not directories).
func (s *Server) FileNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FailWrites makes every write on remote files return err. Pass nil to
// restore normal behavior.
func (s *Server) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// FailReads makes every remote file read return err.
func (s *Server) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// FailRenames makes every remote rename return err.
func (s *Server) FailRenames(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renameErr = err
}

// conn is one SFTP channel view onto the server.
type conn struct {
	server *Server
}

func (c *conn) Stat(p string) (fs.FileInfo, error) {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean(p)
	if data, ok := s.files[p]; ok {
		return remoteInfo{name: path.Base(p), size: int64(len(data))}, nil
	}
	if s.dirs[p] {
		return remoteInfo{name: path.Base(p), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

func (c *conn) ReadDir(p string) ([]fs.FileInfo, error) {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean(p)
	if !s.dirs[p] {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist}
	}
	var entries []fs.FileInfo
	for name, data := range s.files {
		if path.Dir(name) == p {
			entries = append(entries, remoteInfo{name: path.Base(name), size: int64(len(data))})
		}
	}
	for name := range s.dirs {
		if name != p && path.Dir(name) == p {
			entries = append(entries, remoteInfo{name: path.Base(name), dir: true})
		}
	}
	return entries, nil
}

func (c *conn) Mkdir(p string) error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean(p)
	if !s.dirs[path.Dir(p)] {
		return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrNotExist}
	}
	s.dirs[p] = true
	return nil
}

func (c *conn) Remove(p string) error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean(p)
	if _, ok := s.files[p]; !ok {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
	}
	delete(s.files, p)
	return nil
}

func (c *conn) RemoveDirectory(p string) error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean(p)
	if !s.dirs[p] {
		return &fs.PathError{Op: "rmdir", Path: p, Err: fs.ErrNotExist}
	}
	for name := range s.files {
		if path.Dir(name) == p {
			return &fs.PathError{Op: "rmdir", Path: p, Err: fs.ErrInvalid}
		}
	}
	for name := range s.dirs {
		if name != p && path.Dir(name) == p {
			return &fs.PathError{Op: "rmdir", Path: p, Err: fs.ErrInvalid}
		}
	}
	delete(s.dirs, p)
	return nil
}

func (c *conn) Rename(oldPath, newPath string) error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.renameErr != nil {
		return s.renameErr
	}
	oldPath = path.Clean(oldPath)
	newPath = path.Clean(newPath)
	data, ok := s.files[oldPath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	delete(s.files, oldPath)
	s.files[newPath] = data
	return nil
}

func (c *conn) Open(p string) (io.ReadCloser, error) {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	p = path.Clean(p)
	data, ok := s.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	if s.readErr != nil {
		return &failingReader{err: s.readErr}, nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (c *conn) Create(p string) (io.WriteCloser, error) {
	return &remoteWriter{server: c.server, name: path.Clean(p)}, nil
}

func (c *conn) Close() error { return nil }

type remoteWriter struct {
	server *Server
	name   string
	buf    bytes.Buffer
}

func (w *remoteWriter) Write(p []byte) (int, error) {
	w.server.mu.Lock()
	err := w.server.writeErr
	w.server.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return w.buf.Write(p)
}

func (w *remoteWriter) Close() error {
	w.server.mu.Lock()
	defer w.server.mu.Unlock()
	w.server.files[w.name] = append([]byte(nil), w.buf.Bytes()...)
	return nil
}

type failingReader struct{ err error }

func (r *failingReader) Read(p []byte) (int, error) { return 0, r.err }
func (r *failingReader) Close() error               { return nil }

type remoteInfo struct {
	name string
	size int64
	dir  bool
}

func (i remoteInfo) Name() string { return i.name }
func (i remoteInfo) Size() int64  { return i.size }
func (i remoteInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
func (i remoteInfo) ModTime() time.Time { return time.Time{} }
func (i remoteInfo) IsDir() bool        { return i.dir }
func (i remoteInfo) Sys() any           { return nil }
