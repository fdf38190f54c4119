package imapcore

import (
	"strings"

	"github.com/mailwire/imapcore/wire"
)

// trySend implements the send contract. Only ever called from the engine
// goroutine (after Enqueue, and after a command completes).
func (c *Client) trySend() {
	if c.current != nil {
		return // one command in flight at a time
	}
	if len(c.queue) == 0 {
		c.armIdleTimer()
		return
	}
	c.cancelIdleTimer()

	cmd := c.queue[0]
	c.queue = c.queue[1:]

	chunks, err := c.opts.Compiler.Compile(cmd.tag, cmd.request, true, false)
	if err != nil {
		cmd.completion.reject(&CompilerError{Err: err})
		c.fail(&CompilerError{Err: err})
		return
	}
	redacted, _ := c.opts.Compiler.Compile(cmd.tag, cmd.request, true, true)

	cmd.data = chunks
	c.current = cmd
	c.sendChunk(0, redacted)
}

// sendChunk writes cmd.data[i] to the transport and arms the socket
// timeout for its byte length. redacted, when non-nil and of the same
// shape, is what gets traced instead of the real bytes, so a password or
// SASL response never lands in the trace log.
func (c *Client) sendChunk(i int, redacted []string) {
	cmd := c.current
	chunk := cmd.data[i]

	traceLine := chunk
	if redacted != nil && i < len(redacted) {
		traceLine = redacted[i]
	}
	c.opts.Tracer.SentLine(traceLine)

	if _, err := c.bw.Write([]byte(chunk)); err != nil {
		c.fail(&TransportError{Err: err})
		return
	}
	if c.flateW != nil {
		if err := c.flateW.Flush(); err != nil {
			c.fail(&TransportError{Err: err})
			return
		}
	}
	cmd.dataSent = i + 1
	c.armSocketTimer(len(chunk))
}

// handleContinuation routes a continuation request (+): send the next held
// data chunk, or an empty line for a command flagged ErrorExpectsEmptyLine
// once its data is exhausted. text is the continuation's full frame,
// "+" optionally followed by a payload (e.g. an AUTHENTICATE mechanism's
// base64 failure challenge); continuationChallenge decodes it so
// finishCurrent can surface it on the eventual ProtocolError.
func (c *Client) handleContinuation(text string) {
	if c.current == nil {
		return
	}
	if c.current.hasMoreData() {
		c.sendChunk(c.current.dataSent, nil)
		return
	}
	if c.current.request.Name == "IDLE" {
		c.current.idleContinuation = true
		if c.current.idleStopRequested {
			c.sendDone()
		}
		return
	}
	if c.current.errorExpectsEmptyLine {
		c.current.challenge = continuationChallenge(text)
		c.opts.Tracer.SentLine("\r\n")
		if _, err := c.bw.Write([]byte("\r\n")); err != nil {
			c.fail(&TransportError{Err: err})
			return
		}
		if c.flateW != nil {
			if err := c.flateW.Flush(); err != nil {
				c.fail(&TransportError{Err: err})
			}
		}
	}
}

// continuationChallenge decodes a continuation's payload (the text
// following "+") as a SASL challenge, per RFC 4954 §3 (e.g. an XOAUTH2
// failure's base64 JSON error blob). Returns "" for a bare "+" or a
// payload that isn't valid base64, since not every ErrorExpectsEmptyLine
// continuation carries one.
func continuationChallenge(text string) string {
	payload := strings.TrimSpace(strings.TrimPrefix(text, "+"))
	if payload == "" {
		return ""
	}
	b, err := wire.DecodeSASLChallenge(payload)
	if err != nil {
		return ""
	}
	return string(b)
}

// finishCurrent resolves the in-flight command's Completion with resp (its
// final tagged response) and any collected payload. It reports whether the
// reader goroutine must stay parked (see dispatch.go's handleFrame): only
// a successful completion of a PausesReader command holds it, since a
// failed one (NO/BAD) means no Upgrade/EnableCompression call is coming to
// release it later, and an ordinary command never holds it at all. Sending
// the next queued command is deferred to the caller for the same reason.
func (c *Client) finishCurrent(resp *wire.Response) bool {
	cmd := c.current
	c.current = nil

	switch resp.Command {
	case "NO", "BAD":
		cmd.completion.reject(&ProtocolError{
			Code:          resp.Code,
			HumanReadable: resp.HumanReadable,
			Challenge:     cmd.challenge,
		})
		return false
	default:
		resp.Payload = cmd.payload
		cmd.completion.resolve(Result{Response: resp, Payload: cmd.payload})
		return cmd.pausesReader
	}
}
