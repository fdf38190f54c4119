package imapcore

import "github.com/mailwire/imapcore/wire"

// Idle enqueues an IDLE command and returns its Completion (which resolves
// once the server answers the "DONE" below with its tagged response)
// alongside a stop function the caller invokes to end the idle period.
// Calling stop before the server's "+" continuation has arrived is safe:
// it just marks the idle as stop-requested, and DONE is sent the instant
// the continuation does arrive instead.
//
// Grounded on imapclient/idle.go's IdleCommand (Wait/Close pair), adapted
// from a single-purpose wrapper type to a plain (Completion, stop func())
// pair so IDLE composes with the same Completion API every other command
// uses.
func (c *Client) Idle() (*Completion, func()) {
	comp := c.Enqueue(wire.Idle())
	stop := func() {
		c.do(func() {
			cmd := c.current
			if cmd == nil || cmd.completion != comp {
				cmd = nil
				for _, qc := range c.queue {
					if qc.completion == comp {
						cmd = qc
						break
					}
				}
			}
			if cmd == nil {
				return
			}
			if cmd == c.current && cmd.idleContinuation {
				c.sendDone()
				return
			}
			cmd.idleStopRequested = true
		})
	}
	return comp, stop
}

// sendDone writes the bare "DONE\r\n" line that ends an IDLE period. Only
// ever called from the engine goroutine, once IDLE's "+" continuation has
// already been observed.
func (c *Client) sendDone() {
	c.opts.Tracer.SentLine("DONE")
	if _, err := c.bw.Write([]byte("DONE\r\n")); err != nil {
		c.fail(&TransportError{Err: err})
		return
	}
	if c.flateW != nil {
		if err := c.flateW.Flush(); err != nil {
			c.fail(&TransportError{Err: err})
		}
	}
}
