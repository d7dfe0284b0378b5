package http

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/indigo-web/conveyor/config"
	"github.com/indigo-web/conveyor/http"
	"github.com/indigo-web/conveyor/http/headers"
	"github.com/indigo-web/conveyor/http/status"
	"github.com/indigo-web/conveyor/internal/protocol"
	"github.com/indigo-web/conveyor/internal/protocol/http1"
	"github.com/indigo-web/conveyor/internal/tcp"
	"go.uber.org/zap"
)

// FaultMessage is the body of the response sent when a request couldn't be handled.
const FaultMessage = "The server encountered an unexpected condition which prevented it from fulfilling the request."

// Conn runs the request-response loop of a single connection.
type Conn struct {
	client     atomic.Pointer[tcp.Client]
	suit       protocol.Suit
	handler    http.Handler
	cfg        *config.Config
	log        *zap.Logger
	stopping   atomic.Bool
	started    atomic.Bool
	persistent bool
	done       chan struct{}
}

func NewConn(conn net.Conn, handler http.Handler, cfg *config.Config, log *zap.Logger, banner string) *Conn {
	client := tcp.NewClient(conn, cfg.Headers.MaxLineLength, cfg.NET.WriteBufferSize)
	log = log.With(zap.Stringer("remote", client.Remote()))
	c := &Conn{
		suit:       http1.New(client, cfg, log, banner),
		handler:    handler,
		cfg:        cfg,
		log:        log,
		persistent: true,
		done:       make(chan struct{}),
	}
	c.client.Store(client)

	return c
}

// Start runs Serve on a new goroutine, followed by the onExit hooks. Consecutive calls
// do nothing.
func (c *Conn) Start(onExit ...func()) {
	if c.started.CompareAndSwap(false, true) {
		go func() {
			defer close(c.done)
			c.Serve()

			for _, hook := range onExit {
				hook()
			}
		}()
	}
}

// Done is closed after the goroutine launched by Start has exited.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Serve handles requests until the connection is either closed by the peer, is not
// persistent anymore, fails or is stopped. The socket is closed on return.
func (c *Conn) Serve() {
	defer c.release()

	c.log.Debug("serving connection")
	for c.HandleRequest() {
	}

	c.log.Debug("done serving connection")
}

// HandleRequest processes a single request, returning whether the next one may follow.
func (c *Conn) HandleRequest() (ok bool) {
	if c.stopping.Load() {
		return false
	}

	request, err := c.suit.Parse()
	if err != nil {
		return c.onParseError(err)
	}

	if request == nil {
		c.log.Debug("connection closed by peer")
		return false
	}

	c.persistent = c.persistent &&
		request.Proto().PersistentByDefault() &&
		!headers.HasToken(request.Headers(), headers.Connection, headers.Close)

	response, err := c.invoke(request)
	if err != nil {
		return c.fault(err)
	}

	if err = c.suit.Write(response); err != nil {
		return c.fault(err)
	}

	if headers.HasToken(response.Reveal().Headers, headers.Connection, headers.Close) {
		c.persistent = false
	}

	c.log.Debug("exchange completed", zap.Bool("persistent", c.persistent))

	return c.persistent
}

// Stop interrupts the loop: the socket is shut down and closed, unblocking any pending
// read. Then it waits for the goroutine launched by Start at most cfg.NET.StopTimeout,
// after which the goroutine is abandoned. It's safe to call Stop multiple times.
func (c *Conn) Stop() {
	c.stopping.Store(true)
	c.release()

	if !c.started.Load() {
		return
	}

	timer := time.NewTimer(c.cfg.NET.StopTimeout)
	defer timer.Stop()

	select {
	case <-c.done:
	case <-timer.C:
		c.log.Warn("connection handler didn't stop in time, abandoning it", zap.Duration("timeout", c.cfg.NET.StopTimeout))
	}
}

func (c *Conn) invoke(request *http.Request) (response *http.Response, err error) {
	defer recoverPanic(&err)

	response = c.handler(request)
	if response == nil {
		return nil, ErrNilResponse
	}

	return response, nil
}

func (c *Conn) onParseError(err error) bool {
	var httpErr status.HTTPError
	if !errors.As(err, &httpErr) {
		return c.fault(err)
	}

	c.log.Debug("rejecting request", zap.Uint16("code", uint16(httpErr.Code)), zap.Error(err))

	if werr := c.suit.Write(http.NewResponse().Error(httpErr)); werr != nil {
		c.log.Debug("failed to send rejection", zap.Error(werr))
	}

	return false
}

// fault reports the error to the peer as 500 Internal Server Error, unless the connection
// is stopping or already gone, in which case the peer is assumed to be gone as well.
func (c *Conn) fault(err error) bool {
	if c.stopping.Load() || c.client.Load() == nil || errors.Is(err, net.ErrClosed) {
		c.log.Debug("dropping error of a closed connection", zap.Error(err))
		return false
	}

	c.log.Error("connection fault", zap.Error(err))

	response := http.NewResponse().
		Code(status.InternalServerError).
		String(FaultMessage)

	if werr := c.suit.Write(response); werr != nil {
		c.log.Debug("failed to send fault response", zap.Error(werr))
	}

	return false
}

// release takes the socket away, so only a single caller ever closes it.
func (c *Conn) release() {
	client := c.client.Swap(nil)
	if client == nil {
		return
	}

	client.Shutdown()
	if err := client.Close(); err != nil {
		c.log.Debug("closing socket", zap.Error(err))
	}
}
