package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, host string) {
	t.Helper()
	content := "server:\n  host: " + host + "\n  user: batch\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "first.example.com")

	var mu sync.Mutex
	var reloaded *Config
	w, err := NewWatcher(path, func(cfg *Config) {
		mu.Lock()
		reloaded = cfg
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if w.Config().Server.Host != "first.example.com" {
		t.Fatalf("initial host = %q", w.Config().Server.Host)
	}

	writeConfig(t, path, "second.example.com")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := reloaded != nil && reloaded.Server.Host == "second.example.com"
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if reloaded == nil || reloaded.Server.Host != "second.example.com" {
		t.Fatalf("reloaded config = %+v, want updated host", reloaded)
	}
	if w.Config().Server.Host != "second.example.com" {
		t.Errorf("Config() host = %q, want updated host", w.Config().Server.Host)
	}
}

func TestWatcherKeepsConfigOnInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "first.example.com")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	// An invalid rewrite must not clobber the running configuration.
	if err := os.WriteFile(path, []byte("server:\n  user: batch\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if w.Config().Server.Host != "first.example.com" {
		t.Errorf("host = %q, want previous configuration kept", w.Config().Server.Host)
	}
}
