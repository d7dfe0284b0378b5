package transport

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/conveyor/config"
	"go.uber.org/zap"
)

// SpawnFunc takes over an accepted connection. If it fails, the connection is closed.
type SpawnFunc func(conn net.Conn) error

const minAcceptBackoff = 5 * time.Millisecond

type accepted struct {
	conn net.Conn
	err  error
}

// Listener accepts connections on its own goroutine until stopped, passing each to the
// spawn function. The listening socket is closed when the loop exits.
type Listener struct {
	sock      net.Listener
	cfg       *config.Config
	log       *zap.Logger
	spawn     SpawnFunc
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
}

func NewListener(sock net.Listener, cfg *config.Config, log *zap.Logger, spawn SpawnFunc) *Listener {
	return &Listener{
		sock:  sock,
		cfg:   cfg,
		log:   log,
		spawn: spawn,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches the accept loop. Consecutive calls do nothing.
func (l *Listener) Start() {
	if l.started.CompareAndSwap(false, true) {
		go l.run()
	}
}

// Stop signals the accept loop to exit and waits for it at most cfg.NET.StopTimeout. If
// it's still running after that, the socket is closed and the goroutine is abandoned.
// It's safe to call Stop multiple times and before Start.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})

	if !l.started.Load() {
		l.closeSocket()
		return
	}

	timer := time.NewTimer(l.cfg.NET.StopTimeout)
	defer timer.Stop()

	select {
	case <-l.done:
	case <-timer.C:
		l.closeSocket()
		l.log.Warn("accept loop didn't stop in time, abandoning it", zap.Duration("timeout", l.cfg.NET.StopTimeout))
	}
}

// Done is closed once the accept loop has exited.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

func (l *Listener) Addr() net.Addr {
	return l.sock.Addr()
}

func (l *Listener) run() {
	defer close(l.done)
	defer l.closeSocket()

	l.log.Info("listening", zap.Stringer("addr", l.sock.Addr()))
	defer l.log.Info("stopped listening")

	var backoff time.Duration

	for {
		results := make(chan accepted)
		go l.accept(results)

		var result accepted
		select {
		case <-l.stop:
			return
		case result = <-results:
		}

		if result.err != nil {
			if errors.Is(result.err, net.ErrClosed) {
				l.log.Info("listening socket is closed", zap.Error(result.err))
				return
			}

			backoff = min(max(2*backoff, minAcceptBackoff), l.cfg.NET.AcceptBackoff)
			l.log.Warn("accept failed, retrying", zap.Error(result.err), zap.Duration("backoff", backoff))
			if !l.sleep(backoff) {
				return
			}

			continue
		}

		backoff = 0
		l.log.Debug("accepted connection", zap.Stringer("remote", result.conn.RemoteAddr()))

		if err := l.spawn(result.conn); err != nil {
			l.log.Error("failed to spawn connection handler", zap.Error(err))
			_ = result.conn.Close()
		}
	}
}

// accept hands the result over, unless the loop was stopped meanwhile. An accepted
// connection nobody is going to take is closed.
func (l *Listener) accept(results chan<- accepted) {
	conn, err := l.sock.Accept()

	select {
	case results <- accepted{conn, err}:
	case <-l.stop:
		if conn != nil {
			_ = conn.Close()
		}
	}
}

func (l *Listener) sleep(d time.Duration) (ok bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-l.stop:
		return false
	}
}

func (l *Listener) closeSocket() {
	l.closeOnce.Do(func() {
		if err := l.sock.Close(); err != nil {
			l.log.Debug("closing listening socket", zap.Error(err))
		}
	})
}
