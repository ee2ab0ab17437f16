// Package security provides OS keyring integration for SFTP credentials.
package security

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name used for keyring entries.
	KeyringService = "galangal"
)

// KeyringStore resolves passwords and key passphrases from the system
// keyring (macOS Keychain, Linux Secret Service, Windows Credential Manager).
type KeyringStore struct {
	enabled bool
	mu      sync.RWMutex
}

// NewKeyringStore creates a new keyring store. If the system keyring is not
// available, the store is disabled and lookups fail.
func NewKeyringStore() *KeyringStore {
	ks := &KeyringStore{
		enabled: true,
	}

	// Probe availability with a dummy entry.
	testKey := "__galangal_test__"
	if err := keyring.Set(KeyringService, testKey, "test"); err != nil {
		slog.Debug("keyring not available",
			slog.String("error", err.Error()),
		)
		ks.enabled = false
		return ks
	}
	_ = keyring.Delete(KeyringService, testKey)

	slog.Debug("keyring storage enabled")
	return ks
}

// IsEnabled returns true if the keyring is available and enabled.
func (ks *KeyringStore) IsEnabled() bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.enabled
}

// SetEnabled allows enabling/disabling keyring usage.
func (ks *KeyringStore) SetEnabled(enabled bool) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.enabled = enabled
}

// passwordKey names the keyring entry for a login password.
func passwordKey(user, host string) string {
	return fmt.Sprintf("password:%s@%s", user, host)
}

// passphraseKey names the keyring entry for a private key passphrase.
func passphraseKey(keyPath string) string {
	return fmt.Sprintf("passphrase:%s", keyPath)
}

// StorePassword stores a login password for user@host.
func (ks *KeyringStore) StorePassword(user, host, password string) error {
	if !ks.IsEnabled() {
		return fmt.Errorf("keyring not available")
	}
	if err := keyring.Set(KeyringService, passwordKey(user, host), password); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

// GetPassword retrieves the login password for user@host.
func (ks *KeyringStore) GetPassword(user, host string) (string, error) {
	if !ks.IsEnabled() {
		return "", fmt.Errorf("keyring not available")
	}
	password, err := keyring.Get(KeyringService, passwordKey(user, host))
	if err != nil {
		return "", fmt.Errorf("get password: %w", err)
	}
	return password, nil
}

// StorePassphrase stores a private key passphrase keyed by the key file path.
func (ks *KeyringStore) StorePassphrase(keyPath, passphrase string) error {
	if !ks.IsEnabled() {
		return fmt.Errorf("keyring not available")
	}
	if err := keyring.Set(KeyringService, passphraseKey(keyPath), passphrase); err != nil {
		return fmt.Errorf("store passphrase: %w", err)
	}
	return nil
}

// GetPassphrase retrieves the passphrase for a private key file.
func (ks *KeyringStore) GetPassphrase(keyPath string) (string, error) {
	if !ks.IsEnabled() {
		return "", fmt.Errorf("keyring not available")
	}
	passphrase, err := keyring.Get(KeyringService, passphraseKey(keyPath))
	if err != nil {
		return "", fmt.Errorf("get passphrase: %w", err)
	}
	return passphrase, nil
}

// DeletePassword removes a stored login password.
func (ks *KeyringStore) DeletePassword(user, host string) error {
	if !ks.IsEnabled() {
		return fmt.Errorf("keyring not available")
	}
	return keyring.Delete(KeyringService, passwordKey(user, host))
}
