package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/go-raknet"
)

// batchHeader is the ID every RakNet game packet starts with.
const batchHeader = 0xfe

// ErrNotBatch is returned for RakNet packets that are not game batches.
var ErrNotBatch = errors.New("raknet packet is not a batch")

// RakNet implements the Transport interface to accept connections of vanilla clients over RakNet.
type RakNet struct {
	logger *slog.Logger
}

// NewRakNet creates a new RakNet transport instance.
func NewRakNet(logger *slog.Logger) *RakNet {
	return &RakNet{logger: logger}
}

// Listen ...
func (r *RakNet) Listen(addr string) (Listener, error) {
	l, err := raknet.Listen(addr)
	if err != nil {
		return nil, err
	}
	return &RakNetListener{listener: l}, nil
}

// RakNetListener accepts RakNet connections and answers unconnected pings.
type RakNetListener struct {
	listener *raknet.Listener
}

// Accept ...
func (l *RakNetListener) Accept() (Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	return &raknetConn{conn: conn.(*raknet.Conn)}, nil
}

// PongData sets the data returned to unconnected pings.
func (l *RakNetListener) PongData(data []byte) {
	l.listener.PongData(data)
}

// ID returns the server GUID of the listener.
func (l *RakNetListener) ID() int64 {
	return l.listener.ID()
}

// Addr ...
func (l *RakNetListener) Addr() net.Addr {
	return l.listener.Addr()
}

// Close ...
func (l *RakNetListener) Close() error {
	return l.listener.Close()
}

type raknetConn struct {
	conn *raknet.Conn
	mu   sync.Mutex
	buf  []byte
}

// ReadBatch ...
func (c *raknetConn) ReadBatch() ([]byte, error) {
	pk, err := c.conn.ReadPacket()
	if err != nil {
		return nil, err
	}
	if len(pk) == 0 || pk[0] != batchHeader {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotBatch, len(pk))
	}
	return pk[1:], nil
}

// WriteBatch ...
func (c *raknetConn) WriteBatch(batch []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = append(append(c.buf[:0], batchHeader), batch...)
	_, err := c.conn.Write(c.buf)
	return err
}

// SubProtocol ...
func (c *raknetConn) SubProtocol() int {
	return proto.SubProtocolCurrent
}

// RemoteAddr ...
func (c *raknetConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close ...
func (c *raknetConn) Close() error {
	return c.conn.Close()
}
