package dummy

import (
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// Conn replays the data it was created with and records everything written into it.
// Reads after the data is exhausted return io.EOF, as a peer having closed its side would.
type Conn struct {
	mu      sync.Mutex
	reader  io.Reader
	written bytes.Buffer
	closed  bool
}

func NewConn(data string) *Conn {
	return &Conn{reader: strings.NewReader(data)}
}

// NewChoppedConn returns a Conn yielding at most one byte per read, so every read
// path is exercised with short reads.
func NewChoppedConn(data string) *Conn {
	return &Conn{reader: &chopper{strings.NewReader(data)}}
}

func (c *Conn) Read(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}

	return c.reader.Read(b)
}

func (c *Conn) Write(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}

	return c.written.Write(b)
}

// Written returns everything written so far.
func (c *Conn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.written.String()
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return nil
}

func (*Conn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 80}
}

func (*Conn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

func (*Conn) SetDeadline(time.Time) error {
	return nil
}

func (*Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (*Conn) SetWriteDeadline(time.Time) error {
	return nil
}

type chopper struct {
	r io.Reader
}

func (c *chopper) Read(b []byte) (int, error) {
	if len(b) > 1 {
		b = b[:1]
	}

	return c.r.Read(b)
}
