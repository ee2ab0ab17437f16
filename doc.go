// Package galangal provides an SFTP client with managed session lifecycle,
// transactional transfers and overwrite-conflict resolution.
//
// This package provides:
//   - Lazy connection establishment with automatic reconnect when the
//     session goes stale
//   - Optional background keep-alive probing
//   - Host identity verification via an explicit key, a known_hosts file, or
//     disabled entirely
//   - Transactional transfers (write to a temporary name, rename into place)
//     so a destination name never appears partially written
//   - Configurable overwrite policies, including counting-suffix renaming
//   - Recursive remote folder creation and deletion, wildcard listing,
//     deletion and moving
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	cfg := galangal.DefaultConfig()
//	cfg.Host = "example.com"
//	cfg.User = "deploy"
//	cfg.PrivateKeyPath = "/home/deploy/.ssh/id_ed25519"
//	cfg.KnownHostsFile = "/home/deploy/.ssh/known_hosts"
//
//	client, err := galangal.NewClient(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.UploadFile("/remote/path/file.txt", "/local/path/file.txt")
//
// No connection is made until the first operation; a dropped connection is
// re-established transparently on the next call.
//
// # Overwrite Policies
//
// When a destination name is already taken, the configured OverwriteMode
// decides the outcome: fail (OverwriteNever, the default), replace
// (OverwriteAlways), or pick a fresh name by counting suffix
// (OverwriteSuffixBeforeExt, OverwriteSuffixAfterExt).
package galangal
