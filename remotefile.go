package galangal

import "os"

// FileType classifies a remote directory entry.
type FileType int

const (
	// TypeFile is a regular file.
	TypeFile FileType = iota

	// TypeFolder is a directory.
	TypeFolder

	// TypeLink is a symbolic link.
	TypeLink

	// TypeSpecial is anything else (device, socket, pipe).
	TypeSpecial
)

// String returns a human-readable type name.
func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeFolder:
		return "folder"
	case TypeLink:
		return "link"
	default:
		return "special"
	}
}

// RemoteFile is an immutable snapshot of a remote stat or listing result.
type RemoteFile struct {
	// Host is the server the snapshot came from.
	Host string

	// Folder is the parent path on the server.
	Folder string

	// Name is the entry's filename.
	Name string

	// Size is the size in bytes, or -1 when the server did not report one.
	Size int64

	// Type classifies the entry.
	Type FileType
}

// FullPath returns the entry's complete remote path.
func (f RemoteFile) FullPath() string {
	return joinRemote(f.Folder, f.Name)
}

// newRemoteFile builds a snapshot from a stat result.
func newRemoteFile(host, folder string, info os.FileInfo) RemoteFile {
	return RemoteFile{
		Host:   host,
		Folder: folder,
		Name:   info.Name(),
		Size:   info.Size(),
		Type:   fileTypeOf(info),
	}
}

// fileTypeOf classifies a stat result.
func fileTypeOf(info os.FileInfo) FileType {
	mode := info.Mode()
	switch {
	case mode.IsRegular():
		return TypeFile
	case mode.IsDir():
		return TypeFolder
	case mode&os.ModeSymlink != 0:
		return TypeLink
	default:
		return TypeSpecial
	}
}
