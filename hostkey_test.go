package galangal

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"
)

func generateHostKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrap key: %v", err)
	}
	return sshPub
}

func TestHostKeyCallback_Disabled(t *testing.T) {
	env := newTestEnv(t, nil)

	callback, err := env.client.hostKeyCallback()
	if err != nil {
		t.Fatalf("hostKeyCallback: %v", err)
	}
	key := generateHostKey(t)
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 22}
	if err := callback("sftp.example.com:22", addr, key); err != nil {
		t.Errorf("disabled checking rejected a key: %v", err)
	}
}

func TestHostKeyCallback_ExplicitKey(t *testing.T) {
	trusted := generateHostKey(t)
	env := newTestEnv(t, func(cfg *Config) {
		cfg.DisableHostKeyCheck = false
		cfg.HostKey = base64.StdEncoding.EncodeToString(trusted.Marshal())
	})

	callback, err := env.client.hostKeyCallback()
	if err != nil {
		t.Fatalf("hostKeyCallback: %v", err)
	}
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 22}
	if err := callback("sftp.example.com:22", addr, trusted); err != nil {
		t.Errorf("trusted key rejected: %v", err)
	}
	if err := callback("sftp.example.com:22", addr, generateHostKey(t)); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestHostKeyCallback_BadKeyBlob(t *testing.T) {
	tests := []struct {
		name    string
		hostKey string
	}{
		{"not base64", "%%%"},
		{"not a key", base64.StdEncoding.EncodeToString([]byte("junk"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(cfg *Config) {
				cfg.DisableHostKeyCheck = false
				cfg.HostKey = tt.hostKey
			})
			_, err := env.client.hostKeyCallback()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("error = %v, want ConfigError", err)
			}
		})
	}
}

func TestHostKeyCallback_KnownHosts(t *testing.T) {
	trusted := generateHostKey(t)
	path := filepath.Join(t.TempDir(), "known_hosts")
	line := append([]byte("sftp.example.com "), ssh.MarshalAuthorizedKey(trusted)...)
	if err := os.WriteFile(path, line, 0o600); err != nil {
		t.Fatalf("write known_hosts: %v", err)
	}

	env := newTestEnv(t, func(cfg *Config) {
		cfg.DisableHostKeyCheck = false
		cfg.KnownHostsFile = path
	})
	// The readability probe goes through the client's filesystem port.
	env.fs.WriteFile(path, line)

	callback, err := env.client.hostKeyCallback()
	if err != nil {
		t.Fatalf("hostKeyCallback: %v", err)
	}
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 22}
	if err := callback("sftp.example.com:22", addr, trusted); err != nil {
		t.Errorf("known host rejected: %v", err)
	}
	if err := callback("sftp.example.com:22", addr, generateHostKey(t)); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestHostKeyCallback_UnreadableKnownHosts(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.DisableHostKeyCheck = false
		cfg.KnownHostsFile = "/nope/known_hosts"
	})
	_, err := env.client.hostKeyCallback()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestHostKeyCallback_NothingConfiguredAcceptsWithWarning(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.DisableHostKeyCheck = false
	})
	callback, err := env.client.hostKeyCallback()
	if err != nil {
		t.Fatalf("hostKeyCallback: %v", err)
	}
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 22}
	if err := callback("sftp.example.com:22", addr, generateHostKey(t)); err != nil {
		t.Errorf("unverified mode rejected a key: %v", err)
	}
}
