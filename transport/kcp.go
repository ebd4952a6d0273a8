package transport

import (
	"log/slog"
	"net"

	"github.com/xtaci/kcp-go"
)

// KCP implements the Transport interface to accept connections using the KCP protocol.
type KCP struct {
	logger *slog.Logger
}

// NewKCP creates a new KCP transport instance.
func NewKCP(logger *slog.Logger) *KCP {
	return &KCP{logger: logger}
}

// Listen ...
func (k *KCP) Listen(addr string) (Listener, error) {
	l, err := kcp.ListenWithOptions(addr, nil, 10, 3)
	if err != nil {
		return nil, err
	}
	return &kcpListener{listener: l, logger: k.logger}, nil
}

type kcpListener struct {
	listener *kcp.Listener
	logger   *slog.Logger
}

// Accept ...
func (l *kcpListener) Accept() (Conn, error) {
	for {
		sess, err := l.listener.AcceptKCP()
		if err != nil {
			return nil, err
		}

		sess.SetStreamMode(true)
		sess.SetNoDelay(1, 10, 2, 1)
		sess.SetWindowSize(1024, 1024)
		c, err := newStreamConn(sess, sess.RemoteAddr())
		if err != nil {
			_ = sess.Close()
			l.logger.Debug("failed to accept connection", "addr", sess.RemoteAddr(), "err", err)
			continue
		}
		return c, nil
	}
}

// Addr ...
func (l *kcpListener) Addr() net.Addr {
	return l.listener.Addr()
}

// Close ...
func (l *kcpListener) Close() error {
	return l.listener.Close()
}
