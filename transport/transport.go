// Package transport dials the underlying connection an imapcore.Client
// runs over and provides the mid-stream upgrades (STARTTLS, COMPRESS)
// needed to support both without restarting the connection.
//
// Grounded on imapclient/client.go's New/DialTLS/upgradeStartTLS (the
// bufio.Reader/Writer wrapping and options.wrapReadWriter debug-tee
// pattern) and internal/deflate.go (compression).
package transport

import (
	"crypto/tls"
	"io"
	"net"
	"time"
)

// Conn is the minimal surface imapcore needs from a connection: it reads
// like a net.Conn, but additionally supports swapping out its underlying
// transport in place for STARTTLS and COMPRESS, and exposes that ability
// through UpgradeTLS and WrapReadWriter rather than requiring callers to
// reach past it to the dialed net.Conn.
type Conn struct {
	tcp net.Conn
	rw  io.ReadWriter
}

// Dial opens a plaintext TCP connection. Callers that need implicit TLS
// should use DialTLS instead; callers that need STARTTLS should Dial and
// then call UpgradeTLS once the server has confirmed STARTTLS.
func Dial(network, address string, timeout time.Duration) (*Conn, error) {
	conn, err := net.DialTimeout(network, address, timeout)
	if err != nil {
		return nil, err
	}
	return &Conn{tcp: conn, rw: conn}, nil
}

// DialTLS opens a connection with implicit TLS (the "imaps" convention,
// port 993), equivalent to imapclient.DialTLS.
func DialTLS(network, address string, tlsConfig *tls.Config, timeout time.Duration) (*Conn, error) {
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, network, address, tlsConfig)
	if err != nil {
		return nil, err
	}
	return &Conn{tcp: conn, rw: conn}, nil
}

// NewConn wraps an already-established net.Conn (e.g. one end of a
// net.Pipe, or a connection handed over by a custom dialer) instead of
// dialing one itself. Dial and DialTLS are thin convenience wrappers
// around this for the common TCP/TLS cases.
func NewConn(conn net.Conn) *Conn {
	return &Conn{tcp: conn, rw: conn}
}

// ReadWriter returns the current read/write surface; imapcore's reader and
// engine goroutines each keep their own wrapped view (via
// internal/framer.Framer and internal/compress) which this call lets them
// refresh after an Upgrade.
func (c *Conn) ReadWriter() io.ReadWriter {
	return c.rw
}

// UpgradeTLS re-wraps the connection in TLS in place, for STARTTLS.
// Grounded on imapclient/client.go's upgradeStartTLS. It performs the
// handshake's Read/Write calls directly on the connection imapcore's
// reader goroutine otherwise owns; callers (imapcore.Client.Upgrade) must
// only invoke this while that goroutine is parked off the socket, waiting
// on the reader gate rather than blocked inside fr.Next, or the handshake
// races the framer for the server's bytes.
func (c *Conn) UpgradeTLS(tlsConfig *tls.Config) error {
	tlsConn := tls.Client(c.tcp, tlsConfig)
	if err := tlsConn.Handshake(); err != nil {
		return err
	}
	c.tcp = tlsConn
	c.rw = tlsConn
	return nil
}

// WrapReadWriter applies f (typically a debug-tee, or a compression
// codec) to the connection's read/write surface. Grounded on
// Options.wrapReadWriter's io.TeeReader/io.MultiWriter debug pattern,
// generalized so the same hook can install a codec. imapcore.Client does
// not call it: it installs compression through internal/compress.
func (c *Conn) WrapReadWriter(f func(io.ReadWriter) io.ReadWriter) {
	c.rw = f(c.rw)
}

func (c *Conn) Close() error {
	return c.tcp.Close()
}

func (c *Conn) LocalAddr() net.Addr  { return c.tcp.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.tcp.RemoteAddr() }
