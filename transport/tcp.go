package transport

import (
	"log/slog"
	"net"
)

// TCP implements the Transport interface to accept connections using the TCP protocol.
type TCP struct {
	logger *slog.Logger
}

// NewTCP creates a new TCP transport instance.
func NewTCP(logger *slog.Logger) *TCP {
	return &TCP{logger: logger}
}

// Listen ...
func (t *TCP) Listen(addr string) (Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &tcpListener{Listener: l, logger: t.logger}, nil
}

type tcpListener struct {
	net.Listener
	logger *slog.Logger
}

// Accept ...
func (l *tcpListener) Accept() (Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(true)
			_ = tcpConn.SetLinger(0)
			_ = tcpConn.SetReadBuffer(1024 * 1024 * 8)
			_ = tcpConn.SetWriteBuffer(1024 * 1024 * 8)
		}

		c, err := newStreamConn(conn, conn.RemoteAddr())
		if err != nil {
			_ = conn.Close()
			l.logger.Debug("failed to accept connection", "addr", conn.RemoteAddr(), "err", err)
			continue
		}
		return c, nil
	}
}
