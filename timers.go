package imapcore

import "time"

// armIdleTimer starts (or restarts) the idle-notification timer: when the
// queue drains and no command is in flight, wait EnterIdleTimeout before
// emitting OnIdle. Re-entering send cancels it. Only ever called from
// runLoop.
func (c *Client) armIdleTimer() {
	c.cancelIdleTimer()
	c.idleTimer = time.NewTimer(c.opts.EnterIdleTimeout)
}

func (c *Client) cancelIdleTimer() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
}

// armSocketTimer arms the per-write socket timeout:
// SocketTimeoutLowerBound + floor(bytes * SocketTimeoutMultiplier) ms. Any
// inbound byte cancels it, whether it completes a frame or is still part of
// one (see runLoop's incoming and progress cases); firing it is fatal.
func (c *Client) armSocketTimer(bytesWritten int) {
	c.cancelSocketTimer()
	extra := time.Duration(float64(bytesWritten)*c.opts.SocketTimeoutMultiplier) * time.Millisecond
	c.socketTimer = time.NewTimer(c.opts.SocketTimeoutLowerBound + extra)
}

func (c *Client) cancelSocketTimer() {
	if c.socketTimer != nil {
		c.socketTimer.Stop()
		c.socketTimer = nil
	}
}
