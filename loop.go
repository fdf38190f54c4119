package imapcore

import "time"

// readLoop is the sole owner of c.fr (the framer) and the connection's
// read side. It blocks on fr.Next, hands each complete response text to
// the engine goroutine over c.incoming, and then blocks again on
// c.readerGate before ever calling fr.Next a second time. The engine
// goroutine sends on that gate - immediately, for an ordinary frame, or
// only once Upgrade/EnableCompression has finished its codec-changing I/O,
// for the tagged OK completing a PausesReader command (see dispatch.go's
// handleFrame and client.go's releaseReader) - so readLoop is guaranteed to
// be parked here, not blocked inside a raw Read on the shared net.Conn,
// for the whole window during which a STARTTLS handshake or a COMPRESS
// codec swap touches that connection directly. c.fr also signals
// c.progress as it reads, so the engine goroutine can tell a
// partially-read literal body apart from a connection gone silent.
//
// Grounded on imapclient/client.go's Client.read goroutine, split from a
// single reader+dispatcher loop into a pure I/O producer: dispatch lives
// entirely in runLoop/dispatch.go instead, keeping I/O and protocol logic
// in separate goroutines.
func (c *Client) readLoop() {
	for {
		text, err := c.fr.Next()
		if err != nil {
			select {
			case c.readErr <- err:
			case <-c.closed:
			}
			return
		}

		select {
		case c.incoming <- text:
		case <-c.closed:
			return
		}

		select {
		case f := <-c.readerGate:
			if f != nil {
				c.fr.SetReader(f(c.conn.ReadWriter()))
			}
		case <-c.closed:
			return
		}
	}
}

// runLoop is the engine goroutine: the sole owner of current, queue,
// handlers, tagCounter, and both timers. Every piece of external API
// (Enqueue, SetHandler, Upgrade, EnableCompression, Close) hands work in
// here over c.actions instead of locking; see client.go's do helper.
func (c *Client) runLoop() {
	for {
		select {
		case text := <-c.incoming:
			c.opts.Tracer.ReceivedLine(text)
			c.cancelSocketTimer()
			if hold := c.handleFrame(text); !hold {
				c.releaseReader(nil)
			}

		case <-c.progress:
			// A byte arrived but no full frame yet - typically a large
			// literal body still being read in. Cancel same as a complete
			// frame: the socket timeout is only meant to catch a
			// connection that's gone silent after a write, not one still
			// making progress.
			c.cancelSocketTimer()

		case err := <-c.readErr:
			c.fail(&TransportError{Err: err})
			return

		case f := <-c.actions:
			f()

		case <-c.idleTimerC():
			c.idleTimer = nil
			if c.opts.OnIdle != nil {
				c.opts.OnIdle()
			}

		case <-c.socketTimerC():
			c.socketTimer = nil
			c.fail(&TimeoutError{})
			return

		case <-c.closed:
			return
		}
	}
}

// idleTimerC and socketTimerC return the active timer's channel, or a nil
// channel (which blocks forever in a select, never chosen) when the
// corresponding timer isn't currently armed.
func (c *Client) idleTimerC() <-chan time.Time {
	if c.idleTimer == nil {
		return nil
	}
	return c.idleTimer.C
}

func (c *Client) socketTimerC() <-chan time.Time {
	if c.socketTimer == nil {
		return nil
	}
	return c.socketTimer.C
}
