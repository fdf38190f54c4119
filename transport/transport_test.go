package transport

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapReadWriterTeesTraffic(t *testing.T) {
	var debug bytes.Buffer
	c := &Conn{tcp: nil, rw: &loopback{in: bytes.NewBufferString("* OK hi\r\n")}}

	c.WrapReadWriter(func(rw io.ReadWriter) io.ReadWriter {
		return struct {
			io.Reader
			io.Writer
		}{
			Reader: io.TeeReader(rw, &debug),
			Writer: rw,
		}
	})

	buf := make([]byte, 64)
	n, err := c.ReadWriter().Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "* OK hi\r\n", string(buf[:n]))
	assert.Equal(t, "* OK hi\r\n", debug.String())
}

type loopback struct {
	in  *bytes.Buffer
	out bytes.Buffer
}

func (l *loopback) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *loopback) Write(p []byte) (int, error) { return l.out.Write(p) }
