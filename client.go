// Package imapcore implements the framing/dispatch/compression/command-queue
// engine that sits between a duplex IMAP byte transport and a pair of
// external collaborators (wire.Parser, wire.Compiler) that turn bytes into
// response ASTs and command ASTs back into bytes.
//
// The engine runs as a single-threaded cooperative reactor conceptually —
// one logical execution context, suspension only at well-defined yield
// points — split here into exactly two goroutines instead of an event
// loop: a reader goroutine that owns the framer and blocking transport
// reads (mirroring imapclient/client.go's own read() goroutine in the
// library this is adapted from), and one engine goroutine that owns every
// other piece of state — the current command, the queue, the global
// handler table, both timers, and all outbound writes. Because each piece
// of mutable state has exactly one goroutine that ever touches it, no
// component needs to assume parallel mutation, and the invariants hold
// without locks on the hot path; external callers hand requests to the
// engine goroutine over a channel instead of acquiring a mutex.
package imapcore

import (
	"crypto/tls"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mailwire/imapcore/internal/compress"
	"github.com/mailwire/imapcore/internal/framer"
	"github.com/mailwire/imapcore/transport"
	"github.com/mailwire/imapcore/wire"
)

// Default timeout constants.
const (
	DefaultEnterIdleTimeout        = 1000 * time.Millisecond
	DefaultSocketTimeoutLowerBound = 10000 * time.Millisecond
	DefaultSocketTimeoutMultiplier = 0.1 // ms/byte
)

// Handler receives untagged responses registered via Client.SetHandler.
type Handler func(resp *wire.Response)

// Options configures a Client. The zero value is valid: DefaultParser and
// DefaultCompiler are used, timeouts take the documented defaults above,
// and tracing is a no-op.
type Options struct {
	Parser   wire.Parser
	Compiler wire.Compiler
	Tracer   Tracer

	EnterIdleTimeout        time.Duration
	SocketTimeoutLowerBound time.Duration
	SocketTimeoutMultiplier float64

	// OnReady fires once after the first response of any kind (the
	// server greeting, ordinarily).
	OnReady func()
	// OnIdle fires when the queue drains and stays empty for
	// EnterIdleTimeout.
	OnIdle func()
	// OnError fires exactly once, the first time a fatal error is
	// funneled (see funnel.go).
	OnError func(error)
}

func (o *Options) withDefaults() *Options {
	out := *o
	if out.Parser == nil {
		out.Parser = wire.DefaultParser{}
	}
	if out.Compiler == nil {
		out.Compiler = wire.DefaultCompiler{}
	}
	if out.Tracer == nil {
		out.Tracer = noopTracer{}
	}
	if out.EnterIdleTimeout == 0 {
		out.EnterIdleTimeout = DefaultEnterIdleTimeout
	}
	if out.SocketTimeoutLowerBound == 0 {
		out.SocketTimeoutLowerBound = DefaultSocketTimeoutLowerBound
	}
	if out.SocketTimeoutMultiplier == 0 {
		out.SocketTimeoutMultiplier = DefaultSocketTimeoutMultiplier
	}
	return &out
}

// connState mirrors the connection lifecycle: new -> connecting -> open
// (awaiting greeting) -> ready -> closing -> closed. "connecting" has no
// observer here (Dial/DialTLS/New only return once a connection already
// exists), so Client starts at stateOpen.
type connState int32

const (
	stateOpen connState = iota
	stateReady
	stateClosing
	stateClosed
)

// Client is an IMAP transport engine instance. Exactly one goroutine (the
// engine loop started by New) ever mutates current, queue, handlers,
// tagCounter, or either timer; every exported method that needs to touch
// that state sends a request over actions and waits for it to run there.
type Client struct {
	opts *Options

	conn   *transport.Conn
	fr     *framer.Framer
	bw     io.Writer
	flateW *compress.Writer

	state atomic.Int32

	actions chan func()

	incoming   chan string
	readErr    chan error
	readerGate chan func(io.Reader) io.Reader
	progress   chan struct{}

	tagCounter uint64
	current    *command
	queue      []*command
	handlers   map[string]Handler

	idleTimer   *time.Timer
	socketTimer *time.Timer

	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps an already-established transport.Conn. Most callers should use
// Dial or DialTLS instead; New is exposed for callers that need a
// transport.Conn configured some other way (e.g. a test double).
//
// Grounded on imapclient/client.go's New (starts the read goroutine and
// returns immediately, doing no I/O itself beyond that).
func New(conn *transport.Conn, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	opts = opts.withDefaults()

	c := &Client{
		opts:       opts,
		conn:       conn,
		fr:         framer.New(conn.ReadWriter()),
		bw:         conn.ReadWriter(),
		actions:    make(chan func()),
		incoming:   make(chan string, 16),
		readErr:    make(chan error, 1),
		readerGate: make(chan func(io.Reader) io.Reader, 1),
		progress:   make(chan struct{}, 1),
		handlers:   make(map[string]Handler),
		closed:     make(chan struct{}),
	}
	c.fr.SetProgress(c.progress)
	go c.readLoop()
	go c.runLoop()
	return c
}

// Dial opens a plaintext TCP connection (port 143 by convention; callers
// using STARTTLS dial plaintext and later call Upgrade).
func Dial(address string, timeout time.Duration, opts *Options) (*Client, error) {
	conn, err := transport.Dial("tcp", address, timeout)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return New(conn, opts), nil
}

// DialTLS opens a connection with implicit TLS (port 993 by convention).
func DialTLS(address string, tlsConfig *tls.Config, timeout time.Duration, opts *Options) (*Client, error) {
	conn, err := transport.DialTLS("tcp", address, tlsConfig, timeout)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return New(conn, opts), nil
}

// do runs f on the engine goroutine and waits for it to finish. It is the
// single hand-off point every external method uses instead of a mutex.
func (c *Client) do(f func()) {
	done := make(chan struct{})
	select {
	case c.actions <- func() { f(); close(done) }:
		<-done
	case <-c.closed:
	}
}

// Enqueue sends req to the server, assigning it the next monotonic tag,
// and returns a Completion that resolves with its tagged response (and any
// collected untagged payload) or rejects with a ProtocolError or a fatal
// connection error. Grounded on imapclient/client.go's beginCommand (tag
// assignment + pendingCmds append), translated from mutex-protected shared
// state to a single-owner goroutine.
func (c *Client) Enqueue(req *wire.Command) *Completion {
	comp := newCompletion()
	if connState(c.state.Load()) >= stateClosing {
		comp.reject(ErrClosed)
		return comp
	}
	c.do(func() {
		if connState(c.state.Load()) >= stateClosing {
			comp.reject(ErrClosed)
			return
		}
		c.tagCounter++
		tag := fmt.Sprintf("W%d", c.tagCounter)
		cmd := newCommand(tag, req)
		cmd.completion = comp
		c.queue = append(c.queue, cmd)
		c.trySend()
	})
	return comp
}

// SetHandler registers (or replaces, or removes when h is nil) the global
// untagged handler for name. Scoped to this Client instance, not a package
// var, so handlers from one connection never leak into another.
func (c *Client) SetHandler(name string, h Handler) {
	c.do(func() {
		if h == nil {
			delete(c.handlers, name)
			return
		}
		c.handlers[name] = h
	})
}

// Upgrade performs an in-place STARTTLS upgrade: the server has already
// agreed via a STARTTLS command at the command layer (see wire.StartTLS,
// which sets PausesReader). Because that command's tagged OK held the
// reader goroutine parked on c.readerGate instead of letting it loop back
// into fr.Next (see dispatch.go's handleFrame and loop.go's readLoop), the
// TLS handshake's Read/Write calls below have the connection to
// themselves - nothing else is reading it concurrently - so there's no
// race for the ServerHello.
//
// Callers must only call this from within the STARTTLS command's
// Completion, after Wait returns successfully; calling it any other time
// leaves the reader gate unheld and this blocks forever queuing work
// behind it. A handshake failure is treated as fatal (TLS state is
// ambiguous once a handshake has started and failed) rather than an
// attempt to resume the old plaintext reader.
func (c *Client) Upgrade(tlsConfig *tls.Config) error {
	var upgradeErr error
	c.do(func() {
		if err := c.conn.UpgradeTLS(tlsConfig); err != nil {
			upgradeErr = err
			return
		}
		c.bw = c.conn.ReadWriter()
		c.opts.Tracer.Event("starttls upgrade complete")
	})
	if upgradeErr != nil {
		c.do(func() { c.fail(&TransportError{Err: upgradeErr}) })
		return &TransportError{Err: upgradeErr}
	}
	c.releaseReader(func(r io.Reader) io.Reader { return r })
	c.do(func() { c.trySend() })
	return nil
}

// EnableCompression installs RFC 4978 DEFLATE/INFLATE transparently.
// Callers must only call this from within the COMPRESS command's
// Completion, after Wait returns successfully: PausesReader (set by
// wire.Compress) holds the reader goroutine parked on c.readerGate through
// the tagged OK, so at the instant this runs no inbound bytes can have
// been read off the old, uncompressed framer past the boundary - the
// first DEFLATE-compressed byte the server sends is guaranteed to reach
// compress.Reader, not the stale plaintext one.
func (c *Client) EnableCompression() error {
	var setupErr error
	c.do(func() {
		w, err := compress.NewWriter(c.bw, -1)
		if err != nil {
			setupErr = err
			return
		}
		c.flateW = w
		c.bw = w
		c.opts.Tracer.Event("compression enabled")
	})
	if setupErr != nil {
		c.do(func() { c.fail(&WorkerError{Err: setupErr}) })
		return &WorkerError{Err: setupErr}
	}
	c.releaseReader(func(r io.Reader) io.Reader {
		return compress.Reader(r)
	})
	c.do(func() { c.trySend() })
	return nil
}

// releaseReader unblocks readLoop so it can call fr.Next again, optionally
// swapping its underlying reader first (f nil means keep reading the
// current one unchanged). It is sent exactly once per frame: either right
// away, for an ordinary frame (see loop.go's runLoop), or later from
// Upgrade/EnableCompression once the codec-changing I/O they perform is
// done, for a frame that held the reader. readerGate is buffered one deep,
// so this never blocks the engine goroutine behind readLoop's own pace.
func (c *Client) releaseReader(f func(io.Reader) io.Reader) {
	c.readerGate <- f
}

// Logout sends LOGOUT and waits for the server to close the connection (or
// for LOGOUT's own tagged response, whichever happens first), then closes
// the client. The server may answer the tagged LOGOUT response, or simply
// close the connection first; either path resolves the wait.
func (c *Client) Logout() error {
	comp := c.Enqueue(wire.Logout())
	_, err := comp.Wait()
	c.Close()
	if _, ok := err.(*ProtocolError); ok {
		return err
	}
	return nil
}

// Close tears the connection down. It is idempotent and never returns an
// error of its own; errors during close are swallowed after being routed
// once through the error funnel (see funnel.go).
//
// closeOnce is shared with fail: whichever of Close or fail runs first wins,
// and the other becomes a no-op, so a graceful Close racing a read error
// never delivers a spurious OnError and never double-closes c.closed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.state.Store(int32(stateClosing))
		// Run cleanup on the engine goroutine while it is still alive to
		// receive it, then signal it (and any blocked do() callers) to
		// stop. Closing c.closed before this would race do()'s select
		// into skipping the cleanup entirely.
		c.do(func() { c.teardownLocked(nil) })
		c.conn.Close()
		close(c.closed)
	})
	return nil
}
