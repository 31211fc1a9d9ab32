// Package transport provides the byte-stream abstraction the client and
// server dispatch loops are built on: something that can be read from,
// written to, flushed, and closed, regardless of whether it is a plain
// TCP connection or a TLS session.
package transport

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// Stream is a bidirectional byte stream with an explicit Flush, the way
// a buffered TCP or TLS connection needs one. NewStream wraps any
// net.Conn (plain or *tls.Conn) to produce one.
type Stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Flush() error
	Close() error
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// bufferedStream wraps a net.Conn with a bufio.Writer so Flush has
// something to flush; Read passes straight through since the protocol
// layer does its own buffering on read (see internal/netx.CRLFStream).
type bufferedStream struct {
	net.Conn
	w *bufio.Writer
}

// NewStream wraps conn (plain TCP or a completed *tls.Conn) as a Stream.
func NewStream(conn net.Conn) Stream {
	return &bufferedStream{Conn: conn, w: bufio.NewWriter(conn)}
}

func (b *bufferedStream) Write(p []byte) (int, error) { return b.w.Write(p) }
func (b *bufferedStream) Flush() error                { return b.w.Flush() }

// Destination identifies a connection endpoint independent of how it
// was reached: the same (Host, Port, Secure) always resolves to the
// same cached connection. It is the comparable type the client's
// connection cache keys on.
type Destination struct {
	Host   string
	Port   int
	Secure bool
}

func (d Destination) String() string {
	scheme := "http"
	if d.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, d.Host, d.Port)
}

func (d Destination) addr() string {
	return net.JoinHostPort(d.Host, fmt.Sprintf("%d", d.Port))
}

// Dialer opens a Stream to a Destination. TCPDialer and TLSDialer are
// the two concrete implementations; callers needing TLS wrap a
// TCPDialer in a TLSDialer rather than special-casing Secure.
type Dialer interface {
	Dial(d Destination) (Stream, error)
}

// TCPDialer opens plain TCP connections.
type TCPDialer struct {
	// Timeout bounds the connection attempt. Zero means no timeout.
	Timeout time.Duration
}

func (t TCPDialer) Dial(d Destination) (Stream, error) {
	conn, err := net.DialTimeout("tcp", d.addr(), t.Timeout)
	if err != nil {
		return nil, err
	}
	return NewStream(conn), nil
}

// TLSDialer wraps a TCPDialer and performs the TLS handshake, verifying
// the server certificate against d.Host (SNI + hostname verification)
// unless InsecureSkipVerify is set for testing against self-signed
// certificates.
type TLSDialer struct {
	TCPDialer          TCPDialer
	InsecureSkipVerify bool
	RootCAs            *tls.Config // nil uses the system pool
}

func (t TLSDialer) Dial(d Destination) (Stream, error) {
	raw, err := net.DialTimeout("tcp", d.addr(), t.TCPDialer.Timeout)
	if err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		ServerName:         d.Host,
		InsecureSkipVerify: t.InsecureSkipVerify,
	}
	if t.RootCAs != nil {
		cfg.RootCAs = t.RootCAs.RootCAs
	}
	conn := tls.Client(raw, cfg)
	if err := conn.Handshake(); err != nil {
		_ = raw.Close()
		return nil, err
	}
	return NewStream(conn), nil
}

// Listener accepts raw connections, mirroring the original crate's
// Listen trait (one blocking Accept call per connection). It returns
// net.Conn rather than Stream so TLSListener can wrap the connection in
// a TLS handshake before any Stream buffering is layered on top.
type Listener interface {
	Accept() (net.Conn, error)
	Close() error
	Addr() net.Addr
}

// TCPListener accepts plain TCP connections.
type TCPListener struct {
	ln net.Listener
}

// ListenTCP binds addr ("host:port") and returns a TCPListener.
func ListenTCP(addr string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{ln: ln}, nil
}

func (l *TCPListener) Accept() (net.Conn, error) { return l.ln.Accept() }
func (l *TCPListener) Close() error              { return l.ln.Close() }
func (l *TCPListener) Addr() net.Addr            { return l.ln.Addr() }

// TLSListener wraps a plain Listener and terminates TLS on every
// accepted connection before handing it to the caller, the way the
// original crate's SslListener wraps an inner Listen.
type TLSListener struct {
	inner  Listener
	config *tls.Config
}

// NewTLSListener wraps inner with TLS termination using config (which
// must carry at least one certificate).
func NewTLSListener(inner Listener, config *tls.Config) *TLSListener {
	return &TLSListener{inner: inner, config: config}
}

func (l *TLSListener) Accept() (net.Conn, error) {
	raw, err := l.inner.Accept()
	if err != nil {
		return nil, err
	}
	conn := tls.Server(raw, l.config)
	if err := conn.Handshake(); err != nil {
		_ = raw.Close()
		return nil, err
	}
	return conn, nil
}

func (l *TLSListener) Close() error   { return l.inner.Close() }
func (l *TLSListener) Addr() net.Addr { return l.inner.Addr() }
