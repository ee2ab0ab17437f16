package galangal

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThK-Systems/galangal/internal/testing/fakes/fakeclock"
	"github.com/ThK-Systems/galangal/internal/testing/fakes/fakefs"
	"github.com/ThK-Systems/galangal/internal/testing/fakes/fakerand"
	"github.com/ThK-Systems/galangal/internal/testing/fakes/fakesshdialer"
)

// testEnv bundles a client with the fakes behind it.
type testEnv struct {
	client *Client
	server *fakesshdialer.Server
	dialer *fakesshdialer.Dialer
	fs     *fakefs.FS
	clock  *fakeclock.Clock
}

// newTestEnv builds a client on in-memory fakes. mutate, if non-nil, adjusts
// the config before the client is created.
func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	server := fakesshdialer.NewServer()
	env := &testEnv{
		server: server,
		dialer: fakesshdialer.New(server),
		fs:     fakefs.New(),
		clock:  fakeclock.New(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
	}

	cfg := DefaultConfig()
	cfg.Host = "sftp.example.com"
	cfg.User = "tester"
	cfg.Password = "secret"
	cfg.DisableHostKeyCheck = true
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Clock = env.clock
	cfg.Dialer = env.dialer
	cfg.FS = env.fs
	cfg.Rand = fakerand.NewSequential()
	if mutate != nil {
		mutate(&cfg)
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	env.client = client
	t.Cleanup(func() { client.Close() })
	return env
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached: %s", msg)
}
