package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
)

// ErrUnknownTransport is returned by ByName for names no transport is registered under.
var ErrUnknownTransport = errors.New("unknown transport")

// Transport defines an interface for accepting client connections.
type Transport interface {
	// Listen starts accepting connections on the address passed.
	Listen(addr string) (Listener, error)
}

// Listener accepts connections of a single transport.
type Listener interface {
	// Accept blocks until a new connection arrives.
	Accept() (Conn, error)
	Addr() net.Addr
	Close() error
}

// Conn carries the batches of a single client.
type Conn interface {
	// ReadBatch blocks until the next batch arrives and returns it without any transport framing.
	ReadBatch() ([]byte, error)
	// WriteBatch writes a single batch. It is safe for concurrent use.
	WriteBatch(batch []byte) error
	// SubProtocol returns the tag selecting the header layout of the packets in each batch.
	SubProtocol() int
	RemoteAddr() net.Addr
	Close() error
}

// ByName returns the transport registered under the name passed: raknet, tcp, kcp, quic or spectral.
func ByName(name string, logger *slog.Logger) (Transport, error) {
	switch strings.ToLower(name) {
	case "raknet", "":
		return NewRakNet(logger), nil
	case "tcp":
		return NewTCP(logger), nil
	case "kcp":
		return NewKCP(logger), nil
	case "quic":
		return NewQUIC(logger), nil
	case "spectral":
		return NewSpectral(logger), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, name)
}
