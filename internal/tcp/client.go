package tcp

import (
	"bufio"
	"io"
	"net"
	"strings"

	"github.com/indigo-web/conveyor/http/status"
	"github.com/indigo-web/conveyor/internal/buffer"
)

// Client presents a connection as a line reader, an exact-length reader and a writer.
// Reads aren't buffered: lines are scanned byte by byte, so nothing past the current
// line is consumed from the socket. Writes are buffered until Flush.
type Client struct {
	conn   net.Conn
	writer *bufio.Writer
	line   *buffer.Buffer
	octet  [1]byte
}

func NewClient(conn net.Conn, maxLineLength, writeBufferSize int) *Client {
	return &Client{
		conn:   conn,
		writer: bufio.NewWriterSize(conn, writeBufferSize),
		line:   buffer.New(min(maxLineLength, 512), maxLineLength),
	}
}

// ReadLine returns the next line without its LF terminator and a CR directly preceding
// it. A lone CR isn't a terminator. io.EOF is returned only if the stream ended before
// any byte of the line, otherwise the incomplete line is returned as is.
func (c *Client) ReadLine() (string, error) {
	c.line.Clear()

	for {
		if _, err := io.ReadFull(c.conn, c.octet[:]); err != nil {
			if err == io.EOF && c.line.Len() > 0 {
				return c.finishLine(), nil
			}

			return "", err
		}

		if c.octet[0] == '\n' {
			return c.finishLine(), nil
		}

		if !c.line.AppendByte(c.octet[0]) {
			return "", status.ErrTooLongLine
		}
	}
}

func (c *Client) finishLine() string {
	return strings.TrimSuffix(c.line.Finish(), "\r")
}

// ReadFull reads exactly n bytes. A stream ending earlier results in io.ErrUnexpectedEOF,
// or io.EOF if nothing was read at all.
func (c *Client) ReadFull(n int) ([]byte, error) {
	data := make([]byte, n)
	if _, err := io.ReadFull(c.conn, data); err != nil {
		return nil, err
	}

	return data, nil
}

func (c *Client) Write(b []byte) error {
	_, err := c.writer.Write(b)
	return err
}

func (c *Client) WriteString(s string) error {
	_, err := c.writer.WriteString(s)
	return err
}

// Flush sends everything written since the last flush.
func (c *Client) Flush() error {
	return c.writer.Flush()
}

func (c *Client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Shutdown closes both directions of the connection, if it supports half-closing. It
// unblocks a goroutine stuck in reading even on platforms where Close alone doesn't.
func (c *Client) Shutdown() {
	Shutdown(c.conn)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// Shutdown half-closes both directions of conn, if it supports that. The writing side goes
// first, so a reader woken up by the shutdown can't send anything anymore. Errors are
// ignored, as the connection is expected to be closed right after.
func Shutdown(conn net.Conn) {
	if hc, ok := conn.(halfCloser); ok {
		_ = hc.CloseWrite()
		_ = hc.CloseRead()
	}
}
