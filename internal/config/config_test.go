package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThK-Systems/galangal"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 22 {
		t.Errorf("Server.Port = %d, want 22", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if !cfg.Logging.Sanitize {
		t.Error("Logging.Sanitize = false, want true")
	}
}

func TestLoadEmptyPathWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Server.Port != 22 {
		t.Errorf("Server.Port = %d, want 22 (default)", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Load(nonexistent) expected error, got nil")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":::invalid:::yaml{{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load(invalid yaml) expected error, got nil")
	}
}

func TestLoadFile(t *testing.T) {
	content := `
server:
  host: sftp.example.com
  user: batch
  port: 2222
  keep_alive: true
  keep_alive_interval: 10s
  auth:
    key_path: /keys/id_ed25519
  host_key:
    known_hosts: /etc/ssh/known_hosts
transfer:
  strict_mode: false
  overwrite: suffix-before-ext
  auto_create_dirs: true
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "sftp.example.com" {
		t.Errorf("Host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 2222 {
		t.Errorf("Port = %d, want 2222", cfg.Server.Port)
	}
	if !cfg.Server.KeepAlive || cfg.Server.KeepAliveInterval != 10*time.Second {
		t.Errorf("KeepAlive = %v/%v", cfg.Server.KeepAlive, cfg.Server.KeepAliveInterval)
	}
	if cfg.Transfer.StrictMode == nil || *cfg.Transfer.StrictMode {
		t.Error("Transfer.StrictMode not parsed as false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.Server.Host = "" },
			wantErr: true,
		},
		{
			name:    "missing user",
			mutate:  func(c *Config) { c.Server.User = "" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "unknown overwrite policy",
			mutate:  func(c *Config) { c.Transfer.Overwrite = "maybe" },
			wantErr: true,
		},
		{
			name:   "known overwrite policy",
			mutate: func(c *Config) { c.Transfer.Overwrite = "suffix-after-ext" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Server.Host = "sftp.example.com"
			cfg.Server.User = "batch"
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClientConfig(t *testing.T) {
	t.Setenv("GALANGAL_TEST_PASSWORD", "hunter2")

	strict := false
	cfg := DefaultConfig()
	cfg.Server.Host = "sftp.example.com"
	cfg.Server.User = "batch"
	cfg.Server.Auth.PasswordEnv = "GALANGAL_TEST_PASSWORD"
	cfg.Transfer.Overwrite = "suffix-after-ext"
	cfg.Transfer.StrictMode = &strict
	cfg.Transfer.AutoCreateDirs = true

	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		t.Fatalf("ClientConfig: %v", err)
	}
	if clientCfg.Host != "sftp.example.com" || clientCfg.User != "batch" {
		t.Errorf("target = %s@%s", clientCfg.User, clientCfg.Host)
	}
	if clientCfg.Password != "hunter2" {
		t.Errorf("Password = %q, want value from env", clientCfg.Password)
	}
	if clientCfg.Overwrite != galangal.OverwriteSuffixAfterExt {
		t.Errorf("Overwrite = %v", clientCfg.Overwrite)
	}
	if clientCfg.StrictMode {
		t.Error("StrictMode = true, want override from file")
	}
	if !clientCfg.Transactional {
		t.Error("Transactional = false, want default true")
	}
	if !clientCfg.AutoCreateDirs {
		t.Error("AutoCreateDirs = false")
	}
}

func TestOverwriteModeMapping(t *testing.T) {
	tests := []struct {
		name string
		want galangal.OverwriteMode
	}{
		{"", galangal.OverwriteNever},
		{"never", galangal.OverwriteNever},
		{"always", galangal.OverwriteAlways},
		{"suffix-before-ext", galangal.OverwriteSuffixBeforeExt},
		{"suffix-after-ext", galangal.OverwriteSuffixAfterExt},
	}
	for _, tt := range tests {
		if got := overwriteMode(tt.name); got != tt.want {
			t.Errorf("overwriteMode(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
