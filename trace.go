package imapcore

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracer is a structured tracing hook for raw wire traffic and lifecycle
// events, standing in for a plain "logs compiled commands with a redact
// flag" print call. A nil Options.Tracer is replaced by a silent no-op
// tracer, so call sites never special-case an absent tracer.
//
// Grounded on imapclient.Options.DebugWriter's io.TeeReader/io.MultiWriter
// wrapping (client.go), generalized into an interface so a caller can
// route traces to a structured logger instead of a raw byte stream.
type Tracer interface {
	// SentLine is called once per chunk written to the transport, after
	// any redaction the Compiler applied.
	SentLine(line string)
	// ReceivedLine is called once per complete response the framer
	// yields, before parsing.
	ReceivedLine(line string)
	// Event reports a lifecycle occurrence (the client emits one when a
	// STARTTLS upgrade completes and one when compression is enabled).
	Event(format string, args ...any)
}

// noopTracer is used whenever Options.Tracer is nil, so call sites never
// need a nil check.
type noopTracer struct{}

func (noopTracer) SentLine(string)      {}
func (noopTracer) ReceivedLine(string)  {}
func (noopTracer) Event(string, ...any) {}

// writerTracer writes every event as a timestamped line to an io.Writer.
// Grounded on client.go's wrapReadWriter (io.TeeReader/io.MultiWriter),
// adapted from tee-ing raw bytes in place to an explicit, line-oriented
// sink so redacted text (already redacted by the Compiler before it
// reaches SentLine) is what gets logged, never the unredacted argument.
type writerTracer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterTracer returns a Tracer that writes human-readable trace lines
// to w, one per sent line, received line, and event.
func NewWriterTracer(w io.Writer) Tracer {
	return &writerTracer{w: w}
}

func (t *writerTracer) writeln(prefix, s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s %s %s\n", time.Now().Format(time.RFC3339Nano), prefix, s)
}

func (t *writerTracer) SentLine(line string) {
	t.writeln("C:", trimCRLF(line))
}

func (t *writerTracer) ReceivedLine(line string) {
	t.writeln("S:", line)
}

func (t *writerTracer) Event(format string, args ...any) {
	t.writeln("*", fmt.Sprintf(format, args...))
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
