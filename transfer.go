package galangal

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ThK-Systems/galangal/internal/ports"
)

// tempNameLength is the length of the random part of transactional temp
// names.
const tempNameLength = 25

const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Upload streams data to a remote file, applying the configured overwrite
// policy and, in transactional mode, a temp-name-then-rename commit.
func (c *Client) Upload(remoteFileName string, r io.Reader) error {
	c.log.Info("uploading stream", slog.String("remote", remoteFileName))
	return c.uploadStream(remoteFileName, r)
}

// UploadFile uploads a local file to the given remote name.
func (c *Client) UploadFile(remoteFileName, localFileName string) error {
	if err := c.assertLocalFileExists(localFileName); err != nil {
		return err
	}
	info, err := c.fs.Stat(localFileName)
	if err != nil || !info.Mode().IsRegular() {
		return &NotFoundError{Path: localFileName, Side: "local"}
	}

	c.log.Info("uploading file",
		slog.String("local", localFileName),
		slog.String("remote", remoteFileName))

	f, err := c.fs.Open(localFileName)
	if err != nil {
		return fmt.Errorf("open local file %s: %w", localFileName, err)
	}
	defer f.Close()

	return c.uploadStream(remoteFileName, f)
}

// UploadFiles uploads local files into a remote folder, each keeping its
// local filename.
func (c *Client) UploadFiles(remoteFolderName string, localFileNames ...string) error {
	if err := c.assertRemoteFolderExists(remoteFolderName, c.settings().autoCreateDirs); err != nil {
		return err
	}
	for _, local := range localFileNames {
		if err := c.assertLocalFileExists(local); err != nil {
			return err
		}
	}
	for _, local := range localFileNames {
		if err := c.UploadFile(joinRemote(remoteFolderName, filepath.Base(local)), local); err != nil {
			return err
		}
	}
	return nil
}

// UploadData uploads a byte slice to a remote file.
//
// The payload is fully buffered; use Upload with a reader for large
// transfers.
func (c *Client) UploadData(remoteFileName string, data []byte) error {
	c.log.Info("uploading data",
		slog.String("remote", remoteFileName),
		slog.Int("bytes", len(data)))
	return c.uploadStream(remoteFileName, bytes.NewReader(data))
}

// uploadStream is the upload half of the transfer engine. Behavioral
// settings are snapshotted at entry so a concurrent setter cannot change the
// rules mid-transfer.
func (c *Client) uploadStream(remoteFileName string, r io.Reader) error {
	st := c.settings()
	if parent, ok := parentFolder(remoteFileName); ok {
		if err := c.assertRemoteFolderExists(parent, st.autoCreateDirs); err != nil {
			return err
		}
	}

	fileName, err := c.resolveConflict(remoteFileName, c.remoteExists)
	if err != nil {
		return err
	}

	remote, err := c.getConnection()
	if err != nil {
		return err
	}

	if !st.transactional {
		// Direct mode: a failure may leave a partially written destination.
		if err := writeRemote(remote, fileName, r); err != nil {
			return c.transferFailed("upload", fileName, err)
		}
		return nil
	}

	tempName, err := c.tempSibling(fileName)
	if err != nil {
		return err
	}
	c.log.Debug("uploading to temporary file", slog.String("temp", tempName))

	if err := writeRemote(remote, tempName, r); err != nil {
		c.removeRemoteQuietly(remote, tempName)
		return c.transferFailed("upload", fileName, err)
	}

	// Another actor may have written the destination during the transfer
	// window; resolve again before committing.
	fileName, err = c.resolveConflict(fileName, c.remoteExists)
	if err != nil {
		c.removeRemoteQuietly(remote, tempName)
		return err
	}

	if err := remote.Rename(tempName, fileName); err != nil {
		c.removeRemoteQuietly(remote, tempName)
		return c.transferFailed("upload", fileName, err)
	}
	return nil
}

// Download streams a remote file into the given writer.
func (c *Client) Download(remoteFileName string, w io.Writer) error {
	c.log.Info("downloading stream", slog.String("remote", remoteFileName))

	if err := c.assertRemoteFileExists(remoteFileName); err != nil {
		return err
	}
	remote, err := c.getConnection()
	if err != nil {
		return err
	}
	f, err := remote.Open(remoteFileName)
	if err != nil {
		return c.transferFailed("download", remoteFileName, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return c.transferFailed("download", remoteFileName, err)
	}
	return nil
}

// DownloadData downloads a remote file and returns its contents.
//
// The payload is fully buffered; use Download with a writer for large
// transfers.
func (c *Client) DownloadData(remoteFileName string) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Download(remoteFileName, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DownloadFile downloads a remote file to a local path, applying the
// configured overwrite policy against the local filesystem.
func (c *Client) DownloadFile(remoteFileName, localFileName string) error {
	c.log.Info("downloading file",
		slog.String("remote", remoteFileName),
		slog.String("local", localFileName))
	return c.downloadToLocal(remoteFileName, localFileName)
}

// DownloadFiles downloads all regular files of a remote folder
// (non-recursive) matching the wildcard into a local folder.
func (c *Client) DownloadFiles(remoteFolderName, localFolderName, wildcard string) error {
	c.log.Info("downloading files",
		slog.String("remote_folder", remoteFolderName),
		slog.String("local_folder", localFolderName),
		slog.String("wildcard", wildcard))

	if err := c.assertLocalFolderExists(localFolderName, c.settings().autoCreateDirs); err != nil {
		return err
	}
	files, err := c.List(remoteFolderName, wildcard)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.Type != TypeFile {
			continue
		}
		local := filepath.Join(localFolderName, f.Name)
		if err := c.downloadToLocal(f.FullPath(), local); err != nil {
			return err
		}
	}
	return nil
}

// downloadToLocal is the download half of the transfer engine. It mirrors
// uploadStream with local and remote roles swapped.
func (c *Client) downloadToLocal(remoteFileName, localFileName string) error {
	st := c.settings()
	if err := c.assertRemoteFileExists(remoteFileName); err != nil {
		return err
	}
	if err := c.assertLocalFolderExists(filepath.Dir(localFileName), st.autoCreateDirs); err != nil {
		return err
	}

	fileName, err := c.resolveConflict(localFileName, c.localExists)
	if err != nil {
		return err
	}

	remote, err := c.getConnection()
	if err != nil {
		return err
	}

	if !st.transactional {
		if err := c.readRemote(remote, remoteFileName, fileName); err != nil {
			return c.transferFailed("download", remoteFileName, err)
		}
		return nil
	}

	random, err := c.randomName(tempNameLength)
	if err != nil {
		return fmt.Errorf("generate temporary name: %w", err)
	}
	tempName := filepath.Join(filepath.Dir(fileName), "."+random)
	c.log.Debug("downloading to temporary file", slog.String("temp", tempName))

	if err := c.readRemote(remote, remoteFileName, tempName); err != nil {
		c.removeLocalQuietly(tempName)
		return c.transferFailed("download", remoteFileName, err)
	}

	fileName, err = c.resolveConflict(fileName, c.localExists)
	if err != nil {
		c.removeLocalQuietly(tempName)
		return err
	}

	if err := c.fs.Rename(tempName, fileName); err != nil {
		c.removeLocalQuietly(tempName)
		return c.transferFailed("download", remoteFileName, err)
	}
	return nil
}

// writeRemote streams r into a freshly created remote file.
func writeRemote(remote ports.RemoteFS, name string, r io.Reader) error {
	f, err := remote.Create(name)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write remote file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close remote file %s: %w", name, err)
	}
	return nil
}

// readRemote streams a remote file into a freshly created local file.
func (c *Client) readRemote(remote ports.RemoteFS, remoteName, localName string) error {
	src, err := remote.Open(remoteName)
	if err != nil {
		return fmt.Errorf("open remote file %s: %w", remoteName, err)
	}
	defer src.Close()

	dst, err := c.fs.Create(localName)
	if err != nil {
		return fmt.Errorf("create local file %s: %w", localName, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write local file %s: %w", localName, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close local file %s: %w", localName, err)
	}
	return nil
}

// tempSibling generates a random hidden name co-located with the final
// destination, so the commit rename stays on one filesystem.
func (c *Client) tempSibling(fileName string) (string, error) {
	random, err := c.randomName(tempNameLength)
	if err != nil {
		return "", fmt.Errorf("generate temporary name: %w", err)
	}
	if parent, ok := parentFolder(fileName); ok {
		return joinRemote(parent, "."+random), nil
	}
	return "." + random, nil
}

// randomName returns n random alphanumeric characters.
func (c *Client) randomName(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := c.rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphanumerics[int(b)%len(alphanumerics)]
	}
	return string(buf), nil
}

// removeRemoteQuietly deletes a temp artifact best-effort. A cleanup failure
// is logged and suppressed so it never masks the primary failure.
func (c *Client) removeRemoteQuietly(remote ports.RemoteFS, name string) {
	if err := remote.Remove(name); err != nil {
		c.log.Warn("removing temporary remote file",
			slog.String("path", name),
			slog.String("error", err.Error()))
	}
}

// removeLocalQuietly deletes a local temp artifact best-effort.
func (c *Client) removeLocalQuietly(name string) {
	if err := c.fs.Remove(name); err != nil {
		c.log.Warn("removing temporary local file",
			slog.String("path", name),
			slog.String("error", err.Error()))
	}
}

// transferFailed wraps a transport failure during a transfer and forces the
// next keep-alive probe so a broken session is detected before reuse.
func (c *Client) transferFailed(op, name string, err error) error {
	c.mu.Lock()
	c.kaLastSent = time.Time{}
	c.mu.Unlock()
	c.log.Error(op+" failed",
		slog.String("path", name),
		slog.String("error", err.Error()))
	return fmt.Errorf("%s %s: %w", op, name, err)
}
