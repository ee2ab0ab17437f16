package galangal

import (
	"errors"
	"testing"
	"time"
)

func TestKeepAliveLoopProbesPeriodically(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) { cfg.KeepAlive = true })
	env.server.AddDir("/in")

	if _, err := env.client.List("/in", ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	transport := env.dialer.LastTransport()
	// Connecting sends one forced probe.
	if transport.KeepAliveCount() != 1 {
		t.Fatalf("probes after connect = %d, want 1", transport.KeepAliveCount())
	}

	waitFor(t, func() bool { return env.clock.TickerCount() > 0 }, "keep-alive loop started")

	env.clock.Advance(DefaultKeepAliveInterval)
	waitFor(t, func() bool { return transport.KeepAliveCount() >= 2 }, "second probe sent")

	env.clock.Advance(DefaultKeepAliveInterval)
	waitFor(t, func() bool { return transport.KeepAliveCount() >= 3 }, "third probe sent")
}

func TestKeepAliveLoopStopsOnFailureWithoutReconnecting(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) { cfg.KeepAlive = true })
	env.server.AddDir("/in")

	if _, err := env.client.List("/in", ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	transport := env.dialer.LastTransport()
	waitFor(t, func() bool { return env.clock.TickerCount() > 0 }, "keep-alive loop started")

	transport.FailKeepAlives(errors.New("broken pipe"))
	env.clock.Advance(DefaultKeepAliveInterval)
	waitFor(t, func() bool { return transport.KeepAliveCount() >= 2 }, "failing probe sent")

	// The loop exits; further ticks must not probe and the loop itself must
	// never dial.
	count := transport.KeepAliveCount()
	env.clock.Advance(DefaultKeepAliveInterval)
	env.clock.Advance(DefaultKeepAliveInterval)
	time.Sleep(10 * time.Millisecond)
	if transport.KeepAliveCount() != count {
		t.Errorf("probes after loop exit = %d, want %d", transport.KeepAliveCount(), count)
	}
	if env.dialer.DialCount() != 1 {
		t.Errorf("dial count = %d, want 1 (loop never reconnects)", env.dialer.DialCount())
	}

	// The next operation performs the reconnect.
	if _, err := env.client.List("/in", ""); err != nil {
		t.Fatalf("List after keep-alive failure: %v", err)
	}
	if env.dialer.DialCount() != 2 {
		t.Errorf("dial count = %d, want 2 after next operation", env.dialer.DialCount())
	}
}

func TestKeepAliveDisabledByDefault(t *testing.T) {
	env := newTestEnv(t, nil)
	env.server.AddDir("/in")

	if _, err := env.client.List("/in", ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if env.clock.TickerCount() != 0 {
		t.Errorf("ticker count = %d, want 0 with keep-alive disabled", env.clock.TickerCount())
	}
}

func TestDisconnectStopsKeepAliveLoop(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) { cfg.KeepAlive = true })
	env.server.AddDir("/in")

	if _, err := env.client.List("/in", ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	transport := env.dialer.LastTransport()
	waitFor(t, func() bool { return env.clock.TickerCount() > 0 }, "keep-alive loop started")

	env.client.Disconnect()

	count := transport.KeepAliveCount()
	env.clock.Advance(DefaultKeepAliveInterval)
	time.Sleep(10 * time.Millisecond)
	if transport.KeepAliveCount() != count {
		t.Errorf("probes after Disconnect = %d, want %d", transport.KeepAliveCount(), count)
	}
}

func TestProbeSkippedWithinInterval(t *testing.T) {
	env := newTestEnv(t, nil)
	env.server.AddDir("/in")

	if _, err := env.client.List("/in", ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	transport := env.dialer.LastTransport()
	count := transport.KeepAliveCount()

	// Within the interval the liveness check reuses the last result.
	env.clock.Advance(time.Second)
	if _, err := env.client.List("/in", ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	if transport.KeepAliveCount() != count {
		t.Errorf("probes = %d, want %d (no probe within interval)", transport.KeepAliveCount(), count)
	}

	// Once the interval has elapsed the next operation probes again.
	env.clock.Advance(DefaultKeepAliveInterval)
	if _, err := env.client.List("/in", ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	if transport.KeepAliveCount() != count+1 {
		t.Errorf("probes = %d, want %d after interval elapsed", transport.KeepAliveCount(), count+1)
	}
}
