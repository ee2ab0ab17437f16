package galangal

import (
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
)

// Stat returns a snapshot of a remote file or folder, or nil when the path
// does not exist.
func (c *Client) Stat(remoteFileName string) (*RemoteFile, error) {
	remote, err := c.getConnection()
	if err != nil {
		return nil, err
	}
	info, err := remote.Stat(remoteFileName)
	if err != nil {
		// The protocol reports a missing path as a status error; a broken
		// session surfaces on the next operation instead.
		return nil, nil
	}
	parent, _ := parentFolder(remoteFileName)
	file := newRemoteFile(c.cfg.Host, parent, info)
	return &file, nil
}

// List returns the entries of a remote folder matching the wildcard. The
// wildcard applies to filenames only; "" matches everything. "." and ".."
// are excluded and the result is duplicate-free by name, in no particular
// order.
func (c *Client) List(remoteFolderName, wildcard string) ([]RemoteFile, error) {
	pattern, err := normalizeWildcard(wildcard)
	if err != nil {
		return nil, err
	}
	c.log.Debug("listing remote files",
		slog.String("folder", remoteFolderName),
		slog.String("wildcard", pattern))

	if err := c.assertRemoteFolderExists(remoteFolderName, false); err != nil {
		return nil, err
	}
	remote, err := c.getConnection()
	if err != nil {
		return nil, err
	}
	entries, err := remote.ReadDir(remoteFolderName)
	if err != nil {
		return nil, c.transferFailed("list", remoteFolderName, err)
	}

	seen := make(map[string]struct{}, len(entries))
	files := make([]RemoteFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, &ConfigError{Msg: "invalid wildcard: " + pattern, Err: err}
		}
		if !matched {
			continue
		}
		seen[name] = struct{}{}
		files = append(files, newRemoteFile(c.cfg.Host, remoteFolderName, entry))
	}
	return files, nil
}

// CreateFolder creates a remote folder and any missing ancestors. Missing
// ancestors are collected bottom-up and created top-down, so intermediate
// directories always exist before their children. A failure mid-chain leaves
// the partial hierarchy in place; retrying is idempotent.
func (c *Client) CreateFolder(remoteFolderName string) error {
	var missing []string
	name := remoteFolderName
	for name != "" {
		exists, err := c.remoteExists(name)
		if err != nil {
			return err
		}
		if exists {
			break
		}
		missing = append(missing, name)
		parent, ok := parentFolder(name)
		if !ok {
			break
		}
		name = parent
	}

	remote, err := c.getConnection()
	if err != nil {
		return err
	}
	for i := len(missing) - 1; i >= 0; i-- {
		c.log.Debug("creating remote folder", slog.String("folder", missing[i]))
		if err := remote.Mkdir(missing[i]); err != nil {
			return c.transferFailed("create folder", missing[i], err)
		}
	}
	return nil
}

// DeleteFolder recursively deletes a remote folder including all nested
// files and subfolders. Destructive and irreversible.
func (c *Client) DeleteFolder(remoteFolderName string) error {
	if err := c.assertRemoteFolderExists(remoteFolderName, false); err != nil {
		return err
	}
	files, err := c.List(remoteFolderName, "")
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.Type == TypeFolder {
			c.log.Debug("deleting remote folder", slog.String("folder", f.FullPath()))
			if err := c.DeleteFolder(f.FullPath()); err != nil {
				return err
			}
			continue
		}
		if err := c.Delete(f.FullPath()); err != nil {
			return err
		}
	}

	remote, err := c.getConnection()
	if err != nil {
		return err
	}
	if err := remote.RemoveDirectory(remoteFolderName); err != nil {
		return c.transferFailed("delete folder", remoteFolderName, err)
	}
	return nil
}

// Delete removes a single remote file.
func (c *Client) Delete(remoteFileName string) error {
	if err := c.assertRemoteFileExists(remoteFileName); err != nil {
		return err
	}
	remote, err := c.getConnection()
	if err != nil {
		return err
	}
	c.log.Debug("deleting remote file", slog.String("path", remoteFileName))
	if err := remote.Remove(remoteFileName); err != nil {
		return c.transferFailed("delete", remoteFileName, err)
	}
	return nil
}

// DeleteMatching deletes the regular files of a remote folder matching the
// wildcard. Folders matching the wildcard are skipped.
func (c *Client) DeleteMatching(remoteFolderName, wildcard string) error {
	pattern, err := normalizeWildcard(wildcard)
	if err != nil {
		return err
	}
	if err := c.assertRemoteFolderExists(remoteFolderName, false); err != nil {
		return err
	}
	c.log.Debug("deleting remote files",
		slog.String("folder", remoteFolderName),
		slog.String("wildcard", pattern))

	files, err := c.List(remoteFolderName, pattern)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.Type != TypeFile {
			continue
		}
		if err := c.Delete(f.FullPath()); err != nil {
			return err
		}
	}
	return nil
}

// Rename renames a remote file; it can also move a single file across
// folders. Both arguments are full paths.
func (c *Client) Rename(oldFileName, newFileName string) error {
	if err := c.assertRemoteFileExists(oldFileName); err != nil {
		return err
	}
	if parent, ok := parentFolder(newFileName); ok {
		if err := c.assertRemoteFolderExists(parent, c.settings().autoCreateDirs); err != nil {
			return err
		}
	}
	remote, err := c.getConnection()
	if err != nil {
		return err
	}
	c.log.Debug("renaming remote file",
		slog.String("from", oldFileName),
		slog.String("to", newFileName))
	if err := remote.Rename(oldFileName, newFileName); err != nil {
		return c.transferFailed("rename", oldFileName, err)
	}
	return nil
}

// MoveMatching moves the regular files of a source folder matching the
// wildcard into a destination folder, each keeping its filename. The move is
// a rename, not a copy.
func (c *Client) MoveMatching(srcFolderName, dstFolderName, wildcard string) error {
	pattern, err := normalizeWildcard(wildcard)
	if err != nil {
		return err
	}
	if err := c.assertRemoteFolderExists(srcFolderName, false); err != nil {
		return err
	}
	if err := c.assertRemoteFolderExists(dstFolderName, c.settings().autoCreateDirs); err != nil {
		return err
	}

	files, err := c.List(srcFolderName, pattern)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.Type != TypeFile {
			continue
		}
		if err := c.Rename(joinRemote(srcFolderName, f.Name), joinRemote(dstFolderName, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

// assertRemoteFileExists checks, in strict mode, that a remote path exists
// and is a regular file.
func (c *Client) assertRemoteFileExists(remoteFileName string) error {
	if !c.settings().strict {
		return nil
	}
	f, err := c.Stat(remoteFileName)
	if err != nil {
		return err
	}
	if f == nil || f.Type != TypeFile {
		return &NotFoundError{Path: remoteFileName, Side: "remote"}
	}
	return nil
}

// assertRemoteFolderExists checks, in strict mode, that a remote folder
// exists. With create set, a missing folder is created instead (independent
// of strict mode).
func (c *Client) assertRemoteFolderExists(remoteFolderName string, create bool) error {
	strict := c.settings().strict
	if !strict && !create {
		return nil
	}
	f, err := c.Stat(remoteFolderName)
	if err != nil {
		return err
	}
	if f == nil && create {
		return c.CreateFolder(remoteFolderName)
	}
	if strict && (f == nil || f.Type != TypeFolder) {
		return &NotFoundError{Path: remoteFolderName, Side: "remote"}
	}
	return nil
}

// assertLocalFileExists checks, in strict mode, that a local path exists and
// is a regular file.
func (c *Client) assertLocalFileExists(localFileName string) error {
	if !c.settings().strict {
		return nil
	}
	info, err := c.fs.Stat(localFileName)
	if err != nil || !info.Mode().IsRegular() {
		return &NotFoundError{Path: localFileName, Side: "local"}
	}
	return nil
}

// assertLocalFolderExists checks, in strict mode, that a local folder
// exists. With create set, a missing folder is created instead.
func (c *Client) assertLocalFolderExists(localFolderName string, create bool) error {
	if !c.settings().strict && !create {
		return nil
	}
	info, err := c.fs.Stat(localFolderName)
	if err == nil && info.IsDir() {
		return nil
	}
	if create {
		return c.fs.MkdirAll(localFolderName, 0o755)
	}
	return &NotFoundError{Path: localFolderName, Side: "local"}
}
