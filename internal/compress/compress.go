// Package compress installs RFC 4978 COMPRESS=DEFLATE transparently onto
// an already-open connection's read and write sides.
//
// Grounded on internal/deflate.go's deflateConn, which wraps a net.Conn so
// both Read and Write go through compress/flate. This port splits that one
// type in two: the reader goroutine owns the inbound framer.Framer and
// only ever needs a decompressing io.Reader, while the
// engine goroutine owns outbound writes and only ever needs a compressing
// io.WriteCloser. Keeping them separate avoids a shared net.Conn reference
// between the two goroutines' codec state.
package compress

import (
	"compress/flate"
	"io"
)

// Reader returns r wrapped so that reads are inflated. The caller must
// only install this once the negotiating COMPRESS command's tagged OK has
// been read in full, and the underlying reader must have no bytes
// buffered from before that point that were written under the old
// (uncompressed) framing.
func Reader(r io.Reader) io.ReadCloser {
	return flate.NewReader(r)
}

// Writer returns w wrapped so that writes are deflated before reaching w.
// Callers must Flush after each complete command write, or the server
// won't see it until the internal flate window fills: IMAP is
// request/response, not a bulk stream.
type Writer struct {
	w  io.Writer
	fw *flate.Writer
}

// NewWriter wraps w at the given compress/flate level (flate.DefaultCompression
// is a reasonable default; RFC 4978 doesn't mandate a level).
func NewWriter(w io.Writer, level int) (*Writer, error) {
	fw, err := flate.NewWriter(w, level)
	if err != nil {
		return nil, err
	}
	return &Writer{w: w, fw: fw}, nil
}

func (w *Writer) Write(b []byte) (int, error) {
	return w.fw.Write(b)
}

// Flush pushes any buffered compressed bytes out to the underlying writer,
// and flushes that writer too if it supports it (e.g. a bufio.Writer
// sitting between this and the socket).
func (w *Writer) Flush() error {
	if err := w.fw.Flush(); err != nil {
		return err
	}
	if f, ok := w.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (w *Writer) Close() error {
	return w.fw.Close()
}
