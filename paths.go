package galangal

import "strings"

// remoteSeparator separates remote path elements. SFTP paths are always
// slash-separated regardless of the server's platform.
const remoteSeparator = "/"

// parentFolder returns the substring before the final separator. ok is false
// for a root-relative name with no separator at all.
func parentFolder(path string) (parent string, ok bool) {
	idx := strings.LastIndex(path, remoteSeparator)
	if idx < 0 {
		return "", false
	}
	return path[:idx], true
}

// baseName returns the final path element.
func baseName(path string) string {
	idx := strings.LastIndex(path, remoteSeparator)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// joinRemote joins a folder and a name with the remote separator.
func joinRemote(folder, name string) string {
	return strings.TrimSuffix(folder, remoteSeparator) + remoteSeparator + name
}

// normalizeWildcard validates a filename wildcard. An empty pattern matches
// everything. Wildcards are filename-only: a pattern containing the path
// separator is rejected.
func normalizeWildcard(pattern string) (string, error) {
	if pattern == "" {
		return "*", nil
	}
	if strings.Contains(pattern, remoteSeparator) {
		return "", &ConfigError{Msg: "invalid wildcard: " + pattern}
	}
	return pattern, nil
}
