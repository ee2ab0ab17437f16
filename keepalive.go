package galangal

import (
	"log/slog"
	"time"
)

// sendKeepAliveLocked sends a keep-alive probe if forced or if the configured
// interval has elapsed since the last one. It reports false on ANY failure
// and never returns an error; the boolean feeds the reconnect decision in
// getConnection. Callers must hold c.mu.
func (c *Client) sendKeepAliveLocked(forced bool) bool {
	if c.transport == nil {
		return false
	}
	now := c.clock.Now()
	if !forced && now.Before(c.kaLastSent.Add(c.cfg.KeepAliveInterval)) {
		return true
	}
	c.log.Debug("sending keep alive", slog.String("addr", c.addr()))
	if err := c.transport.SendKeepAlive(); err != nil {
		c.kaLastSent = time.Time{}
		return false
	}
	c.kaLastSent = now
	return true
}

// startKeepAliveLoopLocked starts the background probe goroutine if
// keep-alive is enabled. Callers must hold c.mu.
func (c *Client) startKeepAliveLoopLocked() {
	if !c.cfg.KeepAlive {
		return
	}
	c.log.Debug("starting keep alive loop", slog.String("addr", c.addr()))

	// Copy the channel reference and interval so the goroutine never reads
	// the struct fields.
	stop := make(chan struct{})
	c.kaStop = stop
	go c.keepAliveLoop(stop, c.cfg.KeepAliveInterval)
}

// stopKeepAliveLoopLocked signals the probe goroutine to exit. Stopping is
// cooperative: the loop observes the signal on its next wake. Callers must
// hold c.mu.
func (c *Client) stopKeepAliveLoopLocked() {
	if c.kaStop != nil {
		c.log.Debug("stopping keep alive loop")
		close(c.kaStop)
		c.kaStop = nil
		c.kaLastSent = time.Time{}
	}
}

// keepAliveLoop periodically proves the connection is alive without relying
// on transfer traffic. On the first failed probe it exits; the connection is
// presumed lost and the next request-driven getConnection call performs the
// reconnect — the loop itself never does.
func (c *Client) keepAliveLoop(stop <-chan struct{}, interval time.Duration) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			c.mu.Lock()
			ok := c.sendKeepAliveLocked(false)
			c.mu.Unlock()
			if !ok {
				c.log.Warn("connection lost, stopping keep alive loop", slog.String("addr", c.addr()))
				return
			}
		}
	}
}
