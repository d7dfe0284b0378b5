package conveyor

import (
	"errors"
	"fmt"
	"net"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/conveyor/config"
	"github.com/indigo-web/conveyor/http"
	httpserver "github.com/indigo-web/conveyor/internal/server/http"
	"github.com/indigo-web/conveyor/internal/shutdown"
	"github.com/indigo-web/conveyor/transport"
	"go.uber.org/zap"
)

var ErrNilHandler = errors.New("conveyor: handler must not be nil")

// connIDLength is the length of random connection ids distinguishing connections in logs.
const connIDLength = 8

type Option func(*Server)

// WithConfig replaces the default config. Zero fields are filled by defaults.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.cfg = config.Fill(cfg)
	}
}

// WithLogger sets the logger. By default, nothing is logged.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// Server accepts connections in background, serving each on its own goroutine with the
// handler, from the moment it's constructed until Shutdown.
type Server struct {
	cfg      *config.Config
	log      *zap.Logger
	handler  http.Handler
	registry *shutdown.Registry
	listener *transport.Listener
	banner   string
	port     int
}

// New binds a TCP socket on the address and starts serving it. Use port 0 in order to
// pick a free one, Port returns it then.
func New(addr string, handler http.Handler, opts ...Option) (*Server, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	sock, err := transport.Bind(addr)
	if err != nil {
		return nil, fmt.Errorf("conveyor: bind %s: %w", addr, err)
	}

	return NewWithListener(sock, handler, opts...)
}

// NewWithListener starts serving an already bound socket. The server takes ownership
// of it, so it's closed on Shutdown.
func NewWithListener(sock net.Listener, handler http.Handler, opts ...Option) (*Server, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	s := &Server{
		cfg:      config.Default(),
		log:      zap.NewNop(),
		handler:  handler,
		registry: shutdown.NewRegistry(),
		port:     transport.Port(sock),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.banner = banner(s.cfg)
	s.log = s.log.Named(fmt.Sprintf("Listener-%d", s.port))
	s.listener = transport.NewListener(sock, s.cfg, s.log, s.spawn)

	if _, err := s.registry.Register(s.listener.Stop); err != nil {
		return nil, err
	}

	s.listener.Start()

	return s, nil
}

func (s *Server) spawn(conn net.Conn) error {
	log := s.log.Named("connection-" + uniuri.NewLen(connIDLength))
	c := httpserver.NewConn(conn, s.handler, s.cfg, log, s.banner)

	deregister, err := s.registry.Register(c.Stop)
	if err != nil {
		return err
	}

	log.Debug("spawned connection", zap.Int("registered", s.registry.Len()))
	c.Start(deregister)

	return nil
}

// Shutdown stops accepting connections and then stops every spawned connection, in that
// order. Every stop is bounded by cfg.NET.StopTimeout. Consecutive calls do nothing.
func (s *Server) Shutdown() {
	if stopped := s.registry.Execute(); stopped > 0 {
		s.log.Info("shut down", zap.Int("stopped", stopped))
	}
}

// Close is Shutdown, in order to satisfy io.Closer.
func (s *Server) Close() error {
	s.Shutdown()
	return nil
}

// Done is closed once the server stopped accepting connections, either because of
// Shutdown or because the listening socket failed.
func (s *Server) Done() <-chan struct{} {
	return s.listener.Done()
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Port returns the port the server listens on, or 0 if the socket isn't a TCP one.
func (s *Server) Port() int {
	return s.port
}

// Banner returns the Server header value the responses are sent with, unless overridden.
func (s *Server) Banner() string {
	return s.banner
}
