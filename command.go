package imapcore

import (
	"github.com/mailwire/imapcore/wire"
)

// command is one enqueued command record: its tag, the request that
// produced it, which untagged responses it accepts, the payload collected
// so far, and its pending completion.
//
// Grounded on imapclient/client.go's command interface/commandEncoder
// (tag assignment, pendingCmds bookkeeping) and common/command.go's
// Command AST struct, merged into a single richer record here
// (accept_untagged, payload buckets, data chunks, and the
// error-expects-empty-line flag all live on one struct instead of being
// split across a type hierarchy of per-command structs).
type command struct {
	tag     string
	request *wire.Command

	acceptUntagged map[string]bool
	payload        map[string][]*wire.Response

	data     []string
	dataSent int

	errorExpectsEmptyLine bool
	pausesReader          bool

	// challenge holds a continuation's decoded payload when the command
	// failed after sending its last data chunk (see queue.go's
	// handleContinuation and wire.DecodeSASLChallenge) - e.g. an XOAUTH2
	// failure's base64 JSON error blob. Empty unless the server actually
	// sent one.
	challenge string

	// idleContinuation and idleStopRequested coordinate IDLE's DONE line
	// (see idle.go): idleContinuation flips true once the server's "+" for
	// an IDLE command has been observed; idleStopRequested flips true once
	// the caller has asked to stop. DONE is sent the moment both are true,
	// whichever happens second.
	idleContinuation  bool
	idleStopRequested bool

	completion *Completion
}

func newCommand(tag string, req *wire.Command) *command {
	c := &command{
		tag:                   tag,
		request:               req,
		errorExpectsEmptyLine: req.ErrorExpectsEmptyLine,
		pausesReader:          req.PausesReader,
		completion:            newCompletion(),
	}
	if len(req.AcceptUntagged) > 0 {
		c.acceptUntagged = make(map[string]bool, len(req.AcceptUntagged))
		c.payload = make(map[string][]*wire.Response, len(req.AcceptUntagged))
		for _, name := range req.AcceptUntagged {
			c.acceptUntagged[name] = true
		}
	}
	return c
}

func (c *command) accepts(name string) bool {
	return c.acceptUntagged != nil && c.acceptUntagged[name]
}

func (c *command) collect(name string, resp *wire.Response) {
	c.payload[name] = append(c.payload[name], resp)
}

// hasMoreData reports whether a further chunk remains to be sent after a
// continuation request.
func (c *command) hasMoreData() bool {
	return c.dataSent < len(c.data)
}

// Result is what a command resolves with: the final tagged response,
// augmented with any collected untagged payload.
type Result struct {
	Response *wire.Response
	Payload  map[string][]*wire.Response
}

// Completion is the single-shot resolver a command resolves through: it
// resolves with the tagged response (and payload) on success, or rejects
// with a ProtocolError (server NO/BAD) or a fatal connection error.
//
// Grounded on imapclient/client.go's Command.Wait (a buffered channel of
// size 1 plus a stored error), generalized to also carry the payload map.
type Completion struct {
	done chan struct{}
	res  Result
	err  error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

func (c *Completion) resolve(res Result) {
	c.res = res
	close(c.done)
}

func (c *Completion) reject(err error) {
	c.err = err
	close(c.done)
}

// Wait blocks until the command completes, returning its Result or error.
func (c *Completion) Wait() (Result, error) {
	<-c.done
	return c.res, c.err
}

// Done returns a channel closed once the command completes, for use in a
// select alongside a context's Done channel.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}
