package imapcore

// teardownLocked releases every piece of engine-owned state: it must only
// run on the engine goroutine, either directly (fail, already running
// there) or handed over via do (Close, called from any other goroutine).
// Pending commands are rejected with ErrClosed rather than the error that
// triggered the teardown, so callers see one uniform failure mode for "this
// connection is gone" regardless of why.
func (c *Client) teardownLocked(err error) {
	c.cancelIdleTimer()
	c.cancelSocketTimer()

	for _, cmd := range c.queue {
		cmd.completion.reject(ErrClosed)
	}
	c.queue = nil
	if c.current != nil {
		c.current.completion.reject(ErrClosed)
		c.current = nil
	}
	c.handlers = map[string]Handler{}
	c.state.Store(int32(stateClosed))

	if err != nil && c.opts.OnError != nil {
		c.opts.OnError(err)
	}
}

// fail is the error funnel every fatal-error call site routes through: a
// transport read/write failure, a parser error, a compiler error, or a
// socket timeout. It is only ever called from the engine goroutine, so it
// runs teardownLocked directly instead of going through do.
//
// closeOnce makes fail idempotent with Close: the first of the two to run
// tears the connection down and, if it was fail, delivers OnError exactly
// once; any later call (fail called twice, or Close called after a fail) is
// a no-op.
func (c *Client) fail(err error) {
	c.closeOnce.Do(func() {
		c.state.Store(int32(stateClosing))
		c.teardownLocked(err)
		c.conn.Close()
		close(c.closed)
	})
}
