package imapcore

import (
	"strconv"

	"github.com/mailwire/imapcore/wire"
)

// handleFrame dispatches one complete response frame. It is only ever
// called from runLoop, one frame at a time, in the exact order the framer
// emitted them, so responses are always dispatched in that order. Its
// return value tells runLoop's incoming case whether the reader goroutine
// should stay parked (true) rather than being released to read another
// frame: true exactly when this frame was the successful tagged completion
// of a command that set PausesReader (STARTTLS/COMPRESS), in which case
// Client.Upgrade/EnableCompression releases the reader itself once the
// codec-changing I/O is done (see client.go's releaseReader).
//
// Grounded on imapclient/client.go's readResponse/readResponseTagged/
// readResponseData, generalized from that file's hardcoded "switch typ"
// into an accept-table/global-handler routing table.
func (c *Client) handleFrame(text string) bool {
	if len(text) > 0 && text[0] == '+' {
		c.handleContinuation(text)
		c.markReady()
		c.trySend()
		return false
	}

	resp, err := c.opts.Parser.Parse(text)
	if err != nil {
		c.fail(&ParserError{Err: err})
		return false
	}

	normalizeResponse(resp)
	hold := c.route(resp)
	c.markReady()
	if !hold {
		c.trySend()
	}
	return hold
}

// normalizeResponse does the two jobs a wire.Parser is not responsible for:
// splitting a numeric untagged response's sequence number out of Command
// (e.g. "* 17 EXISTS" arrives as Command="17", Attrs=[EXISTS]; this leaves
// Command="EXISTS", Nr=17), and, for resp-cond-state responses, splitting
// their raw resp-text Attrs into Code/CodeArg/HumanReadable. A Parser that
// already returns a fully interpreted Response (Nr/Code already set) is left
// alone — this only fills in what Parse left raw.
func normalizeResponse(resp *wire.Response) {
	if resp.Nr == nil && resp.Tag == "*" && isAllDigits(resp.Command) {
		if n, err := strconv.ParseUint(resp.Command, 10, 32); err == nil {
			nr := uint32(n)
			resp.Nr = &nr
			if len(resp.Attrs) > 0 && resp.Attrs[0].Kind == wire.TokenAtom {
				resp.Command = upperASCII(resp.Attrs[0].Atom)
				resp.Attrs = resp.Attrs[1:]
			}
		}
	}

	if resp.Code == "" && resp.HumanReadable == "" {
		switch resp.Command {
		case "OK", "NO", "BAD", "BYE", "PREAUTH":
			extractRespText(resp)
		}
	}
}

// extractRespText splits a resp-cond-state response's raw Attrs (as left by
// wire.Parser: an optional TokenSection then a TokenString, see
// wire.readRespTextAttrs) into Code/CodeArg/HumanReadable, then clears
// Attrs, since every field "* W1 NO [ALREADYEXISTS] Mailbox exists" carries
// has now been split into a named Response field.
func extractRespText(resp *wire.Response) {
	attrs := resp.Attrs

	if len(attrs) > 0 && attrs[0].Kind == wire.TokenSection {
		items := attrs[0].Items
		if len(items) > 0 {
			if items[0].Kind == wire.TokenAtom {
				resp.Code = upperASCII(items[0].Atom)
			} else {
				resp.Code = upperASCII(items[0].String())
			}
			rest := items[1:]
			switch len(rest) {
			case 0:
			case 1:
				t := rest[0]
				resp.CodeArg = &t
			default:
				t := wire.Token{Kind: wire.TokenList, Items: rest}
				resp.CodeArg = &t
			}
		}
		attrs = attrs[1:]
	}

	if len(attrs) > 0 && attrs[0].Kind == wire.TokenString {
		resp.HumanReadable = attrs[0].Str
	}

	resp.Attrs = nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// route implements the response routing table, excluding the continuation
// case (handled directly in handleFrame since a continuation is never
// parsed into a Response at all). Its bool result is finishCurrent's hold
// signal, propagated unchanged; every other path returns false.
func (c *Client) route(resp *wire.Response) bool {
	if resp.Tag == "*" {
		if c.current == nil {
			if h, ok := c.handlers[resp.Command]; ok {
				h(resp)
			}
			return false
		}
		if c.current.accepts(resp.Command) {
			c.current.collect(resp.Command, resp)
		}
		if h, ok := c.handlers[resp.Command]; ok {
			h(resp)
		}
		return false
	}

	if c.current != nil && resp.Tag == c.current.tag {
		return c.finishCurrent(resp)
	}

	// Neither a continuation, an accepted/global untagged response, nor a
	// match for the in-flight command's tag: dropped silently.
	return false
}

// markReady transitions the connection to ready after the first response
// of any kind (ordinarily the server greeting) and emits OnReady once.
// Sending the next queued command is the caller's job (see handleFrame),
// since whether that's safe to do yet depends on the hold signal.
func (c *Client) markReady() {
	if connState(c.state.Load()) != stateOpen {
		return
	}
	c.state.Store(int32(stateReady))
	if c.opts.OnReady != nil {
		c.opts.OnReady()
	}
}
