package transport

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/cooldogedev/spectral"
)

// Spectral implements the Transport interface to accept connections using Spectral. Like QUIC, a single
// Spectral connection carries one client per stream, so a proxy keeps one connection to prism for all of
// its players.
type Spectral struct {
	logger *slog.Logger
}

// NewSpectral creates a new Spectral transport instance.
func NewSpectral(logger *slog.Logger) *Spectral {
	return &Spectral{logger: logger}
}

// Listen ...
func (s *Spectral) Listen(addr string) (Listener, error) {
	local, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	l, err := spectral.Listen(addr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sl := &spectralListener{
		listener: l,
		addr:     local,
		logger:   s.logger,
		conns:    make(chan Conn),
		ctx:      ctx,
		cancel:   cancel,
	}
	go sl.acceptConnections()
	return sl, nil
}

type spectralListener struct {
	listener *spectral.Listener
	addr     net.Addr
	logger   *slog.Logger
	conns    chan Conn
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

// Accept ...
func (l *spectralListener) Accept() (Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

// Addr returns the address the listener was started on.
func (l *spectralListener) Addr() net.Addr {
	return l.addr
}

// Close ...
func (l *spectralListener) Close() (err error) {
	l.once.Do(func() {
		l.cancel()
		err = l.listener.Close()
	})
	return err
}

func (l *spectralListener) acceptConnections() {
	defer l.cancel()
	for {
		conn, err := l.listener.Accept(l.ctx)
		if err != nil {
			if l.ctx.Err() == nil {
				l.logger.Error("failed to accept connection", "err", err)
			}
			return
		}

		remote := remoteAddr(conn, l.addr)
		l.logger.Debug("established connection", "addr", remote)
		go l.acceptStreams(conn, remote)
	}
}

func (l *spectralListener) acceptStreams(conn spectral.Connection, remote net.Addr) {
	for {
		stream, err := conn.AcceptStream(l.ctx)
		if err != nil {
			if err := conn.Context().Err(); err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("closed connection", "addr", remote, "err", err)
			} else {
				l.logger.Debug("closed connection", "addr", remote)
			}
			return
		}

		go func() {
			c, err := newStreamConn(stream, remote)
			if err != nil {
				_ = stream.Close()
				l.logger.Debug("failed to accept stream", "addr", remote, "err", err)
				return
			}
			select {
			case l.conns <- c:
			case <-l.ctx.Done():
				_ = c.Close()
			}
		}()
	}
}

// remoteAddr returns the peer address of conn, or fallback if the connection does not expose one.
func remoteAddr(conn spectral.Connection, fallback net.Addr) net.Addr {
	if c, ok := conn.(interface{ RemoteAddr() net.Addr }); ok {
		return c.RemoteAddr()
	}
	return fallback
}
