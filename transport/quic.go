package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"log/slog"
	"math/big"
	"net"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/qlog"
)

// QUIC implements the Transport interface to accept connections using the QUIC protocol. A single
// QUIC connection may carry many clients, one per stream, which is how proxies multiplex players.
type QUIC struct {
	logger *slog.Logger
	// Certificate is presented to peers. A self-signed certificate is generated if it is nil.
	Certificate *tls.Certificate
}

// NewQUIC creates a new QUIC transport instance.
func NewQUIC(logger *slog.Logger) *QUIC {
	return &QUIC{logger: logger}
}

// Listen ...
func (q *QUIC) Listen(addr string) (Listener, error) {
	cert := q.Certificate
	if cert == nil {
		generated, err := selfSigned()
		if err != nil {
			return nil, err
		}
		cert = generated
	}

	l, err := quic.ListenAddr(
		addr,
		&tls.Config{
			Certificates: []tls.Certificate{*cert},
			NextProtos:   []string{"prism"},
		},
		&quic.Config{
			MaxIdleTimeout:                 time.Second * 10,
			InitialStreamReceiveWindow:     1024 * 1024 * 10,
			InitialConnectionReceiveWindow: 1024 * 1024 * 10,
			MaxIncomingStreams:             1 << 16,
			KeepAlivePeriod:                0,
			InitialPacketSize:              1350,
			Tracer:                         qlog.DefaultConnectionTracer,
		},
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	ql := &quicListener{
		listener: l,
		logger:   q.logger,
		conns:    make(chan Conn),
		ctx:      ctx,
		cancel:   cancel,
	}
	go ql.acceptConnections()
	return ql, nil
}

type quicListener struct {
	listener *quic.Listener
	logger   *slog.Logger
	conns    chan Conn
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

// Accept ...
func (l *quicListener) Accept() (Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

// Addr ...
func (l *quicListener) Addr() net.Addr {
	return l.listener.Addr()
}

// Close ...
func (l *quicListener) Close() (err error) {
	l.once.Do(func() {
		l.cancel()
		err = l.listener.Close()
	})
	return err
}

func (l *quicListener) acceptConnections() {
	defer l.cancel()
	for {
		conn, err := l.listener.Accept(l.ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, quic.ErrServerClosed) {
				l.logger.Error("failed to accept connection", "err", err)
			}
			return
		}

		l.logger.Debug("established connection", "addr", conn.RemoteAddr())
		go l.acceptStreams(conn)
	}
}

func (l *quicListener) acceptStreams(conn quic.Connection) {
	for {
		stream, err := conn.AcceptStream(l.ctx)
		if err != nil {
			if err := conn.Context().Err(); err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("closed connection", "addr", conn.RemoteAddr(), "err", err)
			} else {
				l.logger.Debug("closed connection", "addr", conn.RemoteAddr())
			}
			return
		}

		go func() {
			c, err := newStreamConn(stream, conn.RemoteAddr())
			if err != nil {
				stream.CancelRead(0)
				_ = stream.Close()
				l.logger.Debug("failed to accept stream", "addr", conn.RemoteAddr(), "err", err)
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

func selfSigned() (*tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: "prism"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * 365 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	return &tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
