package galangal

import (
	"fmt"
	"log/slog"
	"os"
	"path"
)

// existsFunc answers whether a name is already taken. One variant checks the
// local filesystem, the other the remote session; both feed the same suffix
// search.
type existsFunc func(name string) (bool, error)

// localExists reports whether a local path exists.
func (c *Client) localExists(name string) (bool, error) {
	_, err := c.fs.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// remoteExists reports whether a remote path exists. Stat errors are treated
// as "does not exist": the SFTP protocol reports a missing path as a status
// error, and a broken session surfaces on the transfer that follows.
func (c *Client) remoteExists(name string) (bool, error) {
	remote, err := c.getConnection()
	if err != nil {
		return false, err
	}
	if _, err := remote.Stat(name); err != nil {
		return false, nil
	}
	return true, nil
}

// resolveConflict applies the overwrite policy to a desired destination name
// and returns the name to actually use. Candidate generation and existence
// checks are interleaved one at a time because the destination set can change
// underneath transactional transfers. The suffix search has no upper bound.
func (c *Client) resolveConflict(fileName string, exists existsFunc) (string, error) {
	taken, err := exists(fileName)
	if err != nil {
		return "", err
	}
	if !taken {
		return fileName, nil
	}

	overwrite := c.settings().overwrite
	switch overwrite {
	case OverwriteAlways:
		return fileName, nil

	case OverwriteNever:
		return "", &AlreadyExistsError{Path: fileName}

	case OverwriteSuffixBeforeExt, OverwriteSuffixAfterExt:
		ext := path.Ext(baseName(fileName)) // includes the dot, empty if none
		base := fileName[:len(fileName)-len(ext)]
		for counter := 1; ; counter++ {
			var candidate string
			if overwrite == OverwriteSuffixBeforeExt {
				candidate = fmt.Sprintf("%s.%d%s", base, counter, ext)
			} else {
				candidate = fmt.Sprintf("%s%s.%d", base, ext, counter)
			}
			taken, err := exists(candidate)
			if err != nil {
				return "", err
			}
			if !taken {
				c.log.Debug("resolved name conflict",
					slog.String("requested", fileName),
					slog.String("resolved", candidate),
					slog.String("policy", overwrite.String()))
				return candidate, nil
			}
		}

	default:
		return "", &ConfigError{Msg: fmt.Sprintf("unknown overwrite mode %d", overwrite)}
	}
}
