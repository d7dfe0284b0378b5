package conveyor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/indigo-web/conveyor/config"
	"github.com/indigo-web/conveyor/http"
	"github.com/indigo-web/conveyor/internal/protocol/http1"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

type response struct {
	StatusLine string
	Headers    textproto.MIMEHeader
	Body       string
}

type client struct {
	conn   net.Conn
	reader *textproto.Reader
}

func dial(t *testing.T, s *Server) *client {
	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return &client{
		conn:   conn,
		reader: textproto.NewReader(bufio.NewReader(conn)),
	}
}

func (c *client) Send(request string) error {
	_, err := c.conn.Write([]byte(request))
	return err
}

func (c *client) Receive() (response, error) {
	statusLine, err := c.reader.ReadLine()
	if err != nil {
		return response{}, err
	}

	headers, err := c.reader.ReadMIMEHeader()
	if err != nil {
		return response{}, err
	}

	length, err := strconv.Atoi(headers.Get("Content-Length"))
	if err != nil {
		return response{}, err
	}

	body := make([]byte, length)
	if _, err = io.ReadFull(c.reader.R, body); err != nil {
		return response{}, err
	}

	return response{statusLine, headers, string(body)}, nil
}

func (c *client) Exchange(request string) (response, error) {
	if err := c.Send(request); err != nil {
		return response{}, err
	}

	return c.Receive()
}

// closedByPeer reports whether the server has closed the connection. A connection still
// waiting in the backlog when the listening socket is closed gets reset instead.
func (c *client) closedByPeer() bool {
	_, err := c.reader.R.ReadByte()
	return errors.Is(err, io.EOF) || errors.Is(err, syscall.ECONNRESET)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.NET.StopTimeout = 200 * time.Millisecond

	return cfg
}

func newServer(t *testing.T, handler http.Handler, opts ...Option) *Server {
	opts = append([]Option{WithConfig(testConfig())}, opts...)
	s, err := New("127.0.0.1:0", handler, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)

	return s
}

func TestServer(t *testing.T) {
	t.Run("bare request", func(t *testing.T) {
		s := newServer(t, http.Respond)
		c := dial(t, s)

		resp, err := c.Exchange("GET / HTTP/1.1\r\n\r\n")
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 200 OK", resp.StatusLine)
		require.Equal(t, "0", resp.Headers.Get("Content-Length"))
		require.Equal(t, VersionString, resp.Headers.Get("Server"))
		require.Equal(t, "Conveyor "+Version, s.Banner())
		_, err = time.Parse(http1.DateFormat, resp.Headers.Get("Date"))
		require.NoError(t, err)
		require.Empty(t, resp.Body)
	})

	t.Run("keep-alive", func(t *testing.T) {
		s := newServer(t, func(request *http.Request) *http.Response {
			return request.Respond().String(request.Method() + " " + request.Path())
		})
		c := dial(t, s)

		for i := range 3 {
			resp, err := c.Exchange(fmt.Sprintf("GET /%d HTTP/1.1\r\nHost: localhost\r\n\r\n", i))
			require.NoError(t, err)
			require.Equal(t, fmt.Sprintf("GET /%d", i), resp.Body)
			require.Equal(t, "text/plain", resp.Headers.Get("Content-Type"))
		}
	})

	t.Run("connection close", func(t *testing.T) {
		s := newServer(t, http.Respond)
		c := dial(t, s)

		resp, err := c.Exchange("GET / HTTP/1.1\r\nConnection: close\r\n\r\n")
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 200 OK", resp.StatusLine)
		require.True(t, c.closedByPeer())
	})

	t.Run("HTTP/1.0", func(t *testing.T) {
		s := newServer(t, http.Respond)
		c := dial(t, s)

		resp, err := c.Exchange("GET / HTTP/1.0\r\n\r\n")
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 200 OK", resp.StatusLine)
		require.True(t, c.closedByPeer())
	})

	t.Run("malformed request", func(t *testing.T) {
		s := newServer(t, http.Respond)
		c := dial(t, s)

		resp, err := c.Exchange("GET / HTTP/1.1 trailing\r\n")
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 400 Bad Request", resp.StatusLine)
		require.True(t, c.closedByPeer())

		c = dial(t, s)
		resp, err = c.Exchange("GET / HTTP/3\r\n")
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 505 HTTP Version Not Supported", resp.StatusLine)
		require.Equal(t, `Invalid HTTP Version "HTTP/3"`, resp.Body)
	})

	t.Run("chunked request", func(t *testing.T) {
		s := newServer(t, func(request *http.Request) *http.Response {
			return request.Respond().Body(request.Body())
		})
		c := dial(t, s)

		resp, err := c.Exchange("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nHello\r\n0\r\n\r\n")
		require.NoError(t, err)
		require.Equal(t, "Hello", resp.Body)
	})

	t.Run("concurrent clients", func(t *testing.T) {
		s := newServer(t, func(request *http.Request) *http.Response {
			return request.Respond().String(request.Path())
		})

		var g errgroup.Group
		for i := range 16 {
			c := dial(t, s)
			g.Go(func() error {
				for j := range 5 {
					path := fmt.Sprintf("/%d/%d", i, j)
					resp, err := c.Exchange("GET " + path + " HTTP/1.1\r\n\r\n")
					if err != nil {
						return err
					}

					if resp.Body != path {
						return fmt.Errorf("got %q instead of %q", resp.Body, path)
					}
				}

				return nil
			})
		}

		require.NoError(t, g.Wait())
	})
}

func TestShutdown(t *testing.T) {
	t.Run("twice", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		s := newServer(t, http.Respond, WithLogger(zap.New(core)))
		c := dial(t, s)
		_, err := c.Exchange("GET / HTTP/1.1\r\n\r\n")
		require.NoError(t, err)

		start := time.Now()
		s.Shutdown()
		s.Shutdown()
		require.NoError(t, s.Close())
		require.Less(t, time.Since(start), time.Second)

		require.True(t, c.closedByPeer())
		_, err = net.Dial("tcp", s.Addr().String())
		require.Error(t, err)

		shutdowns := logs.FilterMessage("shut down").All()
		require.Len(t, shutdowns, 1)
		require.Equal(t, int64(2), shutdowns[0].ContextMap()["stopped"])
		require.Equal(t, fmt.Sprintf("Listener-%d", s.Port()), shutdowns[0].LoggerName)
		require.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("idle connections", func(t *testing.T) {
		s := newServer(t, http.Respond)
		clients := make([]*client, 4)
		for i := range clients {
			clients[i] = dial(t, s)
			if i < 3 {
				_, err := clients[i].Exchange("GET / HTTP/1.1\r\n\r\n")
				require.NoError(t, err)
			}
		}

		// the last one is sent partially, so its handler is blocked in the middle of reading
		require.NoError(t, clients[3].Send("GET / HTT"))
		time.Sleep(20 * time.Millisecond)

		s.Shutdown()
		for _, c := range clients {
			require.True(t, c.closedByPeer())
		}
	})

	t.Run("connection logger names", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		s := newServer(t, http.Respond, WithLogger(zap.New(core)))
		c := dial(t, s)
		_, err := c.Exchange("GET / HTTP/1.1\r\n\r\n")
		require.NoError(t, err)
		s.Shutdown()

		prefix := fmt.Sprintf("Listener-%d.connection-", s.Port())
		entries := logs.Filter(func(entry observer.LoggedEntry) bool {
			return strings.HasPrefix(entry.LoggerName, prefix)
		})
		require.NotZero(t, entries.Len())

		serving := entries.FilterMessage("serving connection").All()
		require.Len(t, serving, 1)
		require.Equal(t, c.conn.LocalAddr().String(), serving[0].ContextMap()["remote"])
	})

	t.Run("finished connections are forgotten", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		s := newServer(t, http.Respond, WithLogger(zap.New(core)))
		for range 5 {
			c := dial(t, s)
			_, err := c.Exchange("GET / HTTP/1.1\r\nConnection: close\r\n\r\n")
			require.NoError(t, err)
			require.True(t, c.closedByPeer())
		}

		require.Eventually(t, func() bool {
			return s.registry.Len() == 1
		}, time.Second, 5*time.Millisecond)

		s.Shutdown()
		shutdowns := logs.FilterMessage("shut down").All()
		require.Len(t, shutdowns, 1)
		require.Equal(t, int64(1), shutdowns[0].ContextMap()["stopped"])
	})
}

func TestNew(t *testing.T) {
	t.Run("nil handler", func(t *testing.T) {
		_, err := New("127.0.0.1:0", nil)
		require.ErrorIs(t, err, ErrNilHandler)
	})

	t.Run("bad address", func(t *testing.T) {
		_, err := New("127.0.0.1:99999", http.Respond)
		require.Error(t, err)
	})

	t.Run("existing listener", func(t *testing.T) {
		sock, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		cfg := config.Default()
		cfg.HTTP.ServerName = "Fixture"
		s, err := NewWithListener(sock, http.Respond, WithConfig(cfg), WithLogger(nil))
		require.NoError(t, err)
		defer s.Shutdown()

		require.Equal(t, sock.Addr().(*net.TCPAddr).Port, s.Port())
		resp, err := dial(t, s).Exchange("GET / HTTP/1.1\r\n\r\n")
		require.NoError(t, err)
		require.Equal(t, "Fixture "+Version, resp.Headers.Get("Server"))
	})

	t.Run("closer", func(t *testing.T) {
		var closer io.Closer = newServer(t, http.Respond)
		require.NoError(t, closer.Close())
	})
}
