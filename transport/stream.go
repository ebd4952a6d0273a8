package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	proto "github.com/cooldogedev/prism/protocol"
)

// ErrHandshake is returned when a stream does not open with a valid sub-protocol frame.
var ErrHandshake = errors.New("invalid stream handshake")

// streamConn frames batches on a reliable stream. Every frame is prefixed with its length as a 4-byte
// big-endian integer. The first frame holds a single byte: the sub-protocol tag of the stream.
type streamConn struct {
	rwc    io.ReadWriteCloser
	remote net.Addr
	reader *proto.Reader
	writer *proto.Writer
	mu     sync.Mutex
	once   sync.Once

	subProtocol int
}

func newStreamConn(rwc io.ReadWriteCloser, remote net.Addr) (*streamConn, error) {
	c := &streamConn{
		rwc:    rwc,
		remote: remote,
		reader: proto.NewReader(rwc),
		writer: proto.NewWriter(rwc),
	}
	hello, err := c.reader.ReadPacket()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if len(hello) != 1 {
		return nil, fmt.Errorf("%w: hello frame of %d bytes", ErrHandshake, len(hello))
	}
	if tag := int(hello[0]); tag < proto.SubProtocolSingleByte || tag > proto.SubProtocolCurrent {
		return nil, fmt.Errorf("%w: unsupported sub-protocol %d", ErrHandshake, tag)
	}
	c.subProtocol = int(hello[0])
	return c, nil
}

// ReadBatch ...
func (c *streamConn) ReadBatch() ([]byte, error) {
	return c.reader.ReadPacket()
}

// WriteBatch ...
func (c *streamConn) WriteBatch(batch []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writer.Write(batch)
}

// SubProtocol ...
func (c *streamConn) SubProtocol() int {
	return c.subProtocol
}

// RemoteAddr ...
func (c *streamConn) RemoteAddr() net.Addr {
	return c.remote
}

// Close ...
func (c *streamConn) Close() (err error) {
	c.once.Do(func() {
		err = c.rwc.Close()
	})
	return err
}

// Hello returns the frame a stream client sends first to select the sub-protocol passed.
func Hello(subProtocol int) []byte {
	return []byte{byte(subProtocol)}
}
