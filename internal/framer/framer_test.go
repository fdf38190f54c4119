package framer

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// byteAtATimeReader delivers the underlying bytes one at a time, to prove
// Next's chunk-partition invariance: the framed result must not depend on
// how the transport happened to chunk the stream.
type byteAtATimeReader struct {
	b []byte
}

func (r *byteAtATimeReader) Read(p []byte) (int, error) {
	if len(r.b) == 0 {
		return 0, io.EOF
	}
	p[0] = r.b[0]
	r.b = r.b[1:]
	return 1, nil
}

func TestFramerSimpleLine(t *testing.T) {
	f := New(bytes.NewBufferString("* OK greeting\r\n"))
	text, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "* OK greeting", text)
}

func TestFramerLiteralAcrossChunks(t *testing.T) {
	raw := "* 12 FETCH (BODY[] {11}\r\nhello\r\nworld)\r\n"
	f := New(&byteAtATimeReader{b: []byte(raw)})
	text, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "* 12 FETCH (BODY[] {11}\r\nhello\r\nworld)", text)
}

func TestFramerConsecutiveLiterals(t *testing.T) {
	raw := "* 1 FETCH (BODY[1] {2}\r\nhi BODY[2] {3}\r\nbye)\r\n"
	f := New(bytes.NewBufferString(raw))
	text, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "* 1 FETCH (BODY[1] {2}\r\nhi BODY[2] {3}\r\nbye)", text)
}

func TestFramerEmptyLiteral(t *testing.T) {
	raw := "* 1 FETCH (BODY[TEXT] {0}\r\n)\r\n"
	f := New(bytes.NewBufferString(raw))
	text, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "* 1 FETCH (BODY[TEXT] {0}\r\n)", text)
}

func TestFramerNonSyncLiteral(t *testing.T) {
	raw := "a1 LOGIN {5+}\r\nadmin {3+}\r\nfoo\r\n"
	f := New(bytes.NewBufferString(raw))
	text, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "a1 LOGIN {5+}\r\nadmin {3+}\r\nfoo", text)
}

func TestFramerMultipleResponsesSequentially(t *testing.T) {
	f := New(bytes.NewBufferString("* OK hi\r\n* 1 EXISTS\r\na1 OK done\r\n"))

	text, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "* OK hi", text)

	text, err = f.Next()
	require.NoError(t, err)
	assert.Equal(t, "* 1 EXISTS", text)

	text, err = f.Next()
	require.NoError(t, err)
	assert.Equal(t, "a1 OK done", text)

	_, err = f.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFramerBareLF(t *testing.T) {
	// Some servers (or deliberately lax test fixtures) terminate with a
	// bare LF rather than CRLF; tolerate it in the framer rather than the
	// parser.
	f := New(bytes.NewBufferString("* OK hi\n"))
	text, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "* OK hi", text)
}

func TestFramerProgressSignaledAcrossLiteral(t *testing.T) {
	raw := "* 12 FETCH (BODY[] {11}\r\nhello\r\nworld)\r\n"
	f := New(&byteAtATimeReader{b: []byte(raw)})

	progress := make(chan struct{}, 1)
	f.SetProgress(progress)

	stop := make(chan struct{})
	stopped := make(chan struct{})
	seen := 0
	go func() {
		defer close(stopped)
		for {
			select {
			case <-progress:
				seen++
			case <-stop:
				// Count any signal still buffered when Next returned.
				for {
					select {
					case <-progress:
						seen++
					default:
						return
					}
				}
			}
		}
	}()

	text, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "* 12 FETCH (BODY[] {11}\r\nhello\r\nworld)", text)
	close(stop)
	<-stopped

	assert.Greater(t, seen, 0, "expected at least one progress signal while reading a multi-chunk literal")
}

func TestFramerProgressNeverBlocksWithoutReceiver(t *testing.T) {
	// SetProgress's non-blocking send must never stall Next when nothing is
	// draining the channel.
	raw := "* 12 FETCH (BODY[] {11}\r\nhello\r\nworld)\r\n"
	f := New(&byteAtATimeReader{b: []byte(raw)})
	f.SetProgress(make(chan struct{})) // unbuffered, no receiver

	text, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "* 12 FETCH (BODY[] {11}\r\nhello\r\nworld)", text)
}

func TestFramerByteAtATimeMatchesWholeBuffer(t *testing.T) {
	raw := "* 12 FETCH (BODY[] {11}\r\nhello\r\nworld)\r\n"

	whole, err := New(bytes.NewBufferString(raw)).Next()
	require.NoError(t, err)

	chunked, err := New(&byteAtATimeReader{b: []byte(raw)}).Next()
	require.NoError(t, err)

	assert.Equal(t, whole, chunked)
}
